package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
    DB Pinger
}

// Health answers 200 {"status":"ok","database":"up"} when the database
// responds to a ping within two seconds, and 503 with "down" otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()
    if h.DB == nil || h.DB.PingContext(ctx) != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "database": "down"})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "database": "up"})
}
