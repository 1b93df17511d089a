package model

import "time"

// Rating is one user's 1-5 evaluation of one store.  (StoreID, UserID) is
// unique; resubmitting overwrites Value and keeps ID and CreatedAt.
type Rating struct {
    ID        uint64    `json:"id"`
    StoreID   uint64    `json:"storeId"`
    UserID    uint64    `json:"userId"`
    Value     int       `json:"rating"`
    CreatedAt time.Time `json:"createdAt"`
    UpdatedAt time.Time `json:"updatedAt"`
}

// RaterView is a single row of the owner dashboard.
type RaterView struct {
    UserID  uint64    `json:"userId"`
    Name    string    `json:"name"`
    Email   string    `json:"email"`
    Address *string   `json:"address"`
    Rating  int       `json:"rating"`
    RatedAt time.Time `json:"ratedAt"`
}

// DashboardStore is the store header of the owner dashboard.
type DashboardStore struct {
    ID            uint64  `json:"id"`
    Name          string  `json:"name"`
    AverageRating float64 `json:"averageRating"`
}

// OwnerDashboard is the owner's view of feedback on their store.  An owner
// without a store gets Store == nil and an empty, non-nil Raters slice.
type OwnerDashboard struct {
    Store  *DashboardStore `json:"store"`
    Raters []RaterView     `json:"raters"`
}

// DashboardStats are the administrator's headline counters.
type DashboardStats struct {
    TotalUsers   int64 `json:"totalUsers"`
    TotalStores  int64 `json:"totalStores"`
    TotalRatings int64 `json:"totalRatings"`
}
