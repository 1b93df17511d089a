package model

import "time"

// Role names a permission level.  The values are stored verbatim in
// users.role and carried in the JWT "role" claim.
type Role string

const (
    RoleAdmin Role = "ADMIN" // manages users and stores
    RoleOwner Role = "OWNER" // views feedback on the store they own
    RoleUser  Role = "USER"  // browses and rates stores
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleAdmin, RoleOwner, RoleUser:
        return true
    }
    return false
}

// User represents a row in the `users` table.  PasswordHash never leaves
// the server; handlers serialise users through the json tags below.
type User struct {
    ID           uint64    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Address      *string   `json:"address"`
    Role         Role      `json:"role"`
    CreatedAt    time.Time `json:"createdAt"`
    UpdatedAt    time.Time `json:"updatedAt"`
}

// UserListItem is a user row in the admin listing.  StoreRating is the mean
// of the averages of the stores the user owns, nil for users without stores.
type UserListItem struct {
    User
    StoreRating *float64 `json:"storeRating"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored, only its SHA‑256 hash.
type RefreshToken struct {
    ID        uint64
    UserID    uint64
    TokenHash string
    ExpiresAt time.Time
    RevokedAt *time.Time
    CreatedAt time.Time
}
