package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/store-rating/internal/model"
    "github.com/iliyamo/store-rating/internal/service"
    "github.com/iliyamo/store-rating/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Auth      *service.AuthService
    Users     *service.UserService
    JWTSecret string
    // Invalidate runs after a registration changes the user count.  May be nil.
    Invalidate Invalidator
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, jwtSecret string, invalidate Invalidator) *AuthHandler {
    if auth == nil || users == nil {
        panic("nil service passed to NewAuthHandler")
    }
    return &AuthHandler{Auth: auth, Users: users, JWTSecret: jwtSecret, Invalidate: invalidate}
}

// ----- DTOs -----

type registerReq struct {
    Name     string  `json:"name" validate:"required,min=20,max=60"`
    Email    string  `json:"email" validate:"required,email"`
    Password string  `json:"password" validate:"required,password_policy"`
    Address  *string `json:"address" validate:"omitempty,max=400"`
}

type loginReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type refreshReq struct {
    RefreshToken string `json:"refreshToken"`
}

type changePasswordReq struct {
    OldPassword string `json:"oldPassword" validate:"required"`
    NewPassword string `json:"newPassword" validate:"required,password_policy"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

type authResp struct {
    User    model.User `json:"user"`
    Access  tokenPart  `json:"access"`
    Refresh tokenPart  `json:"refresh"`
}

func sessionResp(s *service.Session) authResp {
    return authResp{
        User:    s.User,
        Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
        Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp}, // raw back to client
    }
}

// Register creates a USER account.  No tokens are issued; the client logs
// in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.Register(ctx, service.NewUser{
        Name:     req.Name,
        Email:    req.Email,
        Password: req.Password,
        Address:  req.Address,
    })
    if err != nil {
        return respondError(c, err)
    }
    h.Invalidate.after(c)
    return c.JSON(http.StatusCreated, u)
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    sess, err := h.Auth.Login(ctx, req.Email, req.Password)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, sessionResp(sess))
}

// Refresh rotates the refresh token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    sess, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, sessionResp(sess))
}

// Logout supports two modes.  A refreshToken in the body revokes that one
// session.  Without one, a valid Bearer access token revokes every session
// of its user.  The route is public so an expired access token does not
// prevent logging out with the refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := reqCtx(c)
    defer cancel()

    if refreshToken != "" {
        if err := h.Auth.Logout(ctx, refreshToken); err != nil {
            return respondError(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }

    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        claims, err := utils.ParseAccessToken(h.JWTSecret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
        if err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
        }
        uid, _ := claims.UserID()
        if err := h.Auth.LogoutAll(ctx, uid); err != nil {
            return respondError(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refreshToken"})
}

// ChangePassword replaces the caller's password and revokes their sessions.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req changePasswordReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Auth.ChangePassword(ctx, uid, req.OldPassword, req.NewPassword); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's own user record.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetUser(ctx, uid)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}
