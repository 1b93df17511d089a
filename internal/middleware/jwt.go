package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/utils"
)

// Context keys set by JWTAuth.
const (
    ctxUserID = "user_id" // uint64
    ctxRole   = "role"    // string
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the user id and role claims into the request context.  The
// provided secret must match the one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            // ParseAccessToken pins HS256 and requires exp
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            uid, _ := claims.UserID()

            c.Set(ctxUserID, uid)
            c.Set(ctxRole, claims.Role)
            return next(c)
        }
    }
}
