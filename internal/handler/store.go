package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/service"
)

// StoreHandler serves the store browsing and rating endpoints.
type StoreHandler struct {
    Stores *service.StoreService
    // Invalidate runs after a rating is stored.  Left nil when the rating
    // event consumer already does it.
    Invalidate Invalidator
}

func NewStoreHandler(stores *service.StoreService, invalidate Invalidator) *StoreHandler {
    if stores == nil {
        panic("nil service passed to NewStoreHandler")
    }
    return &StoreHandler{Stores: stores, Invalidate: invalidate}
}

type listStoresReq struct {
    SearchName    string `query:"searchName" validate:"max=120"`
    SearchAddress string `query:"searchAddress" validate:"max=400"`
    SortBy        string `query:"sortBy" validate:"omitempty,oneof=name address createdAt overallRating"`
    Order         string `query:"order" validate:"omitempty,oneof=asc desc"`
    Page          int    `query:"page" validate:"min=0"`
    Limit         int    `query:"limit" validate:"min=0"`
}

func (r listStoresReq) query(viewer *uint64) service.StoreQuery {
    return service.StoreQuery{
        SearchName:    r.SearchName,
        SearchAddress: r.SearchAddress,
        SortBy:        r.SortBy,
        Order:         r.Order,
        Page:          r.Page,
        Limit:         r.Limit,
        ViewerID:      viewer,
    }
}

type submitRatingReq struct {
    Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// List returns {items, total}.  Every item carries the caller's own rating
// in myRating.
func (h *StoreHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req listStoresReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    page, err := h.Stores.ListStores(ctx, req.query(&uid))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, page)
}

// Get returns a single store.  myRating is always null here.
func (h *StoreHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    st, err := h.Stores.GetStore(ctx, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// SubmitRating creates or overwrites the caller's rating of a store.
func (h *StoreHandler) SubmitRating(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
    }
    var req submitRatingReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    rt, err := h.Stores.SubmitRating(ctx, id, uid, req.Rating)
    if err != nil {
        return respondError(c, err)
    }
    h.Invalidate.after(c)
    return c.JSON(http.StatusOK, rt)
}
