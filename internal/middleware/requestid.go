package middleware

import (
    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// RequestID tags every request and response with an X-Request-ID.  A client
// supplied id is kept; otherwise a random UUID is generated.
func RequestID() echo.MiddlewareFunc {
    return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        Generator: func() string { return uuid.NewString() },
    })
}
