package middleware

// identity.go holds the accessors handlers and other middleware use to read
// what JWTAuth stored on the context.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/model"
)

// UserID returns the authenticated user's id.  ok is false on routes that
// did not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" when unauthenticated.
func Role(c echo.Context) model.Role {
    r, _ := c.Get(ctxRole).(string)
    return model.Role(r)
}

// identityKey is the user component of rate limit and cache keys.  It
// returns "guest" when no user is authenticated.
func identityKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}
