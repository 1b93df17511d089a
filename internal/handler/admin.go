package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/model"
    "github.com/iliyamo/store-rating/internal/service"
)

// AdminHandler serves the administrator dashboard and user/store management.
type AdminHandler struct {
    Stores *service.StoreService
    Users  *service.UserService
    Stats  *service.StatsService
    Invalidate Invalidator // may be nil
}

func NewAdminHandler(stores *service.StoreService, users *service.UserService, stats *service.StatsService, invalidate Invalidator) *AdminHandler {
    if stores == nil || users == nil || stats == nil {
        panic("nil service passed to NewAdminHandler")
    }
    return &AdminHandler{Stores: stores, Users: users, Stats: stats, Invalidate: invalidate}
}

func (h *AdminHandler) invalidate(c echo.Context) { h.Invalidate.after(c) }

type createUserReq struct {
    Name     string     `json:"name" validate:"required,min=20,max=60"`
    Email    string     `json:"email" validate:"required,email"`
    Password string     `json:"password" validate:"required,password_policy"`
    Address  *string    `json:"address" validate:"omitempty,max=400"`
    Role     model.Role `json:"role" validate:"omitempty,role"`
}

type listUsersReq struct {
    Name   string     `query:"name"`
    Email  string     `query:"email"`
    Role   model.Role `query:"role" validate:"omitempty,role"`
    SortBy string     `query:"sortBy" validate:"omitempty,oneof=name email role createdAt"`
    Order  string     `query:"order" validate:"omitempty,oneof=asc desc"`
    Page   int        `query:"page" validate:"min=0"`
    Limit  int        `query:"limit" validate:"min=0"`
}

type createStoreReq struct {
    Name        string  `json:"name" validate:"required,max=120"`
    Email       string  `json:"email" validate:"required,email"`
    Address     string  `json:"address" validate:"required,max=400"`
    OwnerUserID *uint64 `json:"ownerUserId" validate:"omitempty,min=1"`
}

// Dashboard returns {totalUsers, totalStores, totalRatings}.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    stats, err := h.Stats.Dashboard(ctx)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
    var req listUsersReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    page, err := h.Users.ListUsers(ctx, service.UserQuery{
        Name:   req.Name,
        Email:  req.Email,
        Role:   req.Role,
        SortBy: req.SortBy,
        Order:  req.Order,
        Page:   req.Page,
        Limit:  req.Limit,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) GetUser(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetUser(ctx, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// CreateUser adds an account of any role; role defaults to USER.
func (h *AdminHandler) CreateUser(c echo.Context) error {
    var req createUserReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.CreateUser(ctx, service.NewUser{
        Name:     req.Name,
        Email:    req.Email,
        Password: req.Password,
        Address:  req.Address,
        Role:     req.Role,
    })
    if err != nil {
        return respondError(c, err)
    }
    h.invalidate(c)
    return c.JSON(http.StatusCreated, u)
}

// ListStores is the admin listing: same filters and sorts as the user
// listing, without myRating.
func (h *AdminHandler) ListStores(c echo.Context) error {
    var req listStoresReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    page, err := h.Stores.ListStores(ctx, req.query(nil))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) GetStore(c echo.Context) error {
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

func (h *AdminHandler) CreateStore(c echo.Context) error {
    var req createStoreReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    st, err := h.Stores.CreateStore(ctx, service.NewStore{
        Name:        req.Name,
        Email:       req.Email,
        Address:     req.Address,
        OwnerUserID: req.OwnerUserID,
    })
    if err != nil {
        return respondError(c, err)
    }
    h.invalidate(c)
    return c.JSON(http.StatusCreated, st)
}
