package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/middleware"
    "github.com/iliyamo/store-rating/internal/repository"
    "github.com/iliyamo/store-rating/internal/service"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID returns the authenticated caller's id as set by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := middleware.UserID(c); ok {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

// Invalidator drops cached dashboard responses after a write.
type Invalidator func(ctx context.Context)

func (fn Invalidator) after(c echo.Context) {
    if fn != nil {
        fn(c.Request().Context())
    }
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// respondError maps service and repository sentinels to HTTP statuses.
// Anything unrecognised is logged and answered with 500.
func respondError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrStoreNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
    case errors.Is(err, repository.ErrUserNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    case errors.Is(err, repository.ErrInvalidRefresh):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    case errors.Is(err, service.ErrInvalidCredentials):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    case errors.Is(err, service.ErrWrongPassword):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrInvalidOwner):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrInvalidRating):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, context.DeadlineExceeded):
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
    }
    c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
