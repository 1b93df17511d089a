package model

import "time"

// Store is a rateable venue.  A store has at most one owner; OwnerUserID is
// nil until an administrator assigns one.
type Store struct {
    ID          uint64    `json:"id"`
    Name        string    `json:"name"`
    Email       string    `json:"email"`
    Address     string    `json:"address"`
    OwnerUserID *uint64   `json:"ownerUserId"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// StoreSummary is the per-request view of a store with its computed rating.
// OverallRating is 0 for a store without ratings.  MyRating is the caller's
// own rating and stays null when no viewer was supplied or the viewer has
// not rated the store.
type StoreSummary struct {
    ID            uint64    `json:"id"`
    Name          string    `json:"name"`
    Email         string    `json:"email"`
    Address       string    `json:"address"`
    OwnerUserID   *uint64   `json:"ownerUserId"`
    CreatedAt     time.Time `json:"createdAt"`
    OverallRating float64   `json:"overallRating"`
    MyRating      *int      `json:"myRating"`
}

// StorePage is one page of a store listing.  Total counts every store that
// matches the filter, independent of pagination.
type StorePage struct {
    Items []StoreSummary `json:"items"`
    Total int64          `json:"total"`
}
