package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/handler"
    "github.com/iliyamo/store-rating/internal/middleware"
    "github.com/iliyamo/store-rating/internal/model"
)

var (
    anyRole   = []model.Role{model.RoleAdmin, model.RoleOwner, model.RoleUser}
    adminOnly = []model.Role{model.RoleAdmin}
)

// Permissions is the single source of truth for role gating.  Every route
// registered on the protected group must appear here; missing entries are
// rejected with 403.
var Permissions = middleware.Permissions{
    "GET /v1/me":                    anyRole,
    "POST /v1/auth/change-password": anyRole,
    "GET /v1/stores":                {model.RoleUser, model.RoleAdmin},
    "GET /v1/stores/:id":            anyRole,
    "POST /v1/stores/:id/rating":    {model.RoleUser},
    "GET /v1/owner/dashboard":       {model.RoleOwner},
    "GET /v1/admin/dashboard":       adminOnly,
    "GET /v1/admin/users":           adminOnly,
    "POST /v1/admin/users":          adminOnly,
    "GET /v1/admin/users/:id":       adminOnly,
    "GET /v1/admin/stores":          adminOnly,
    "POST /v1/admin/stores":         adminOnly,
    "GET /v1/admin/stores/:id":      adminOnly,
}

// Handlers groups everything RegisterRoutes wires up.
type Handlers struct {
    Health *handler.HealthHandler
    Auth   *handler.AuthHandler
    Stores *handler.StoreHandler
    Owner  *handler.OwnerHandler
    Admin  *handler.AdminHandler
}

// Options carries the middleware that depends on runtime configuration.
type Options struct {
    JWTSecret string
    // DashboardCache fronts GET /v1/admin/dashboard.  nil means no caching.
    DashboardCache echo.MiddlewareFunc
}

// RegisterRoutes registers the public routes, the auth routes and the
// protected /v1 group behind JWTAuth and Authorize.
func RegisterRoutes(e *echo.Echo, h Handlers, opts Options) {
    e.GET("/healthz", h.Health.Health)

    // Operations that do not require an existing session.
    pub := e.Group("/v1/auth")
    pub.POST("/register", h.Auth.Register)
    pub.POST("/login", h.Auth.Login)
    pub.POST("/refresh", h.Auth.Refresh)
    pub.POST("/logout", h.Auth.Logout)

    g := e.Group("/v1", middleware.JWTAuth(opts.JWTSecret), middleware.Authorize(Permissions))
    g.GET("/me", h.Auth.Me)
    g.POST("/auth/change-password", h.Auth.ChangePassword)

    g.GET("/stores", h.Stores.List)
    g.GET("/stores/:id", h.Stores.Get)
    g.POST("/stores/:id/rating", h.Stores.SubmitRating)

    g.GET("/owner/dashboard", h.Owner.Dashboard)

    admin := g.Group("/admin")
    if opts.DashboardCache != nil {
        admin.GET("/dashboard", h.Admin.Dashboard, opts.DashboardCache)
    } else {
        admin.GET("/dashboard", h.Admin.Dashboard)
    }
    admin.GET("/users", h.Admin.ListUsers)
    admin.POST("/users", h.Admin.CreateUser)
    admin.GET("/users/:id", h.Admin.GetUser)
    admin.GET("/stores", h.Admin.ListStores)
    admin.POST("/stores", h.Admin.CreateStore)
    admin.GET("/stores/:id", h.Admin.GetStore)
}
