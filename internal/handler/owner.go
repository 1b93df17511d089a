package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/service"
)

// OwnerHandler serves the store owner's feedback dashboard.
type OwnerHandler struct {
    Stores *service.StoreService
}

func NewOwnerHandler(stores *service.StoreService) *OwnerHandler {
    if stores == nil {
        panic("nil service passed to NewOwnerHandler")
    }
    return &OwnerHandler{Stores: stores}
}

type ownerDashboardReq struct {
    SortBy string `query:"sortBy" validate:"omitempty,oneof=ratedAt rating name"`
    Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
}

// Dashboard returns {store, raters}.  An owner without a store gets
// {"store": null, "raters": []} with 200.
func (h *OwnerHandler) Dashboard(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req ownerDashboardReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    dash, err := h.Stores.OwnerDashboard(ctx, uid, service.RaterSort{SortBy: req.SortBy, Order: req.Order})
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, dash)
}
