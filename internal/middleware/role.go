package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/model"
)

// Permissions maps a route, written as "METHOD /registered/path", to the
// roles allowed to call it.  The path is the pattern the route was
// registered with (c.Path()), so "/v1/stores/:id" and not the concrete URL.
type Permissions map[string][]model.Role

// Allows reports whether role may call method on the registered path.
// Routes missing from the table allow nobody.
func (p Permissions) Allows(method, path string, role model.Role) bool {
    for _, r := range p[method+" "+path] {
        if r == role {
            return true
        }
    }
    return false
}

// Authorize enforces the permission table for every route it wraps.  It
// must run after JWTAuth, which stores the caller's role in the context.
// A protected route that was never added to the table answers 403 rather
// than falling open.
func Authorize(perms Permissions) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role := Role(c)
            if role == "" || !perms.Allows(c.Request().Method, c.Path(), role) {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
