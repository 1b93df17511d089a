package router

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/mock"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/store-rating/internal/handler"
    "github.com/iliyamo/store-rating/internal/mocks"
    "github.com/iliyamo/store-rating/internal/model"
    "github.com/iliyamo/store-rating/internal/repository"
    "github.com/iliyamo/store-rating/internal/service"
    "github.com/iliyamo/store-rating/internal/utils"
)

const testSecret = "router-secret"

type app struct {
    e       *echo.Echo
    stores  *mocks.StoreRepository
    ratings *mocks.RatingRepository
    users   *mocks.UserRepository
    tokens  *mocks.TokenRepository
    events  *mocks.EventPublisher
    flushed int
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newApp(t *testing.T) *app {
    a := &app{
        stores:  &mocks.StoreRepository{},
        ratings: &mocks.RatingRepository{},
        users:   &mocks.UserRepository{},
        tokens:  &mocks.TokenRepository{},
        events:  &mocks.EventPublisher{},
    }
    storeSvc := service.NewStoreService(a.stores, a.ratings, a.users, a.events)
    userSvc := service.NewUserService(a.users, a.stores, a.ratings, bcrypt.MinCost)
    authSvc := service.NewAuthService(a.users, a.tokens, service.AuthConfig{
        JWTSecret: testSecret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: bcrypt.MinCost,
    })
    statsSvc := service.NewStatsService(a.users, a.stores, a.ratings)

    flush := func(context.Context) { a.flushed++ }

    a.e = echo.New()
    a.e.Validator = handler.NewValidator()
    RegisterRoutes(a.e, Handlers{
        Health: &handler.HealthHandler{DB: okPinger{}},
        Auth:   handler.NewAuthHandler(authSvc, userSvc, testSecret, flush),
        Stores: handler.NewStoreHandler(storeSvc, flush),
        Owner:  handler.NewOwnerHandler(storeSvc),
        Admin:  handler.NewAdminHandler(storeSvc, userSvc, statsSvc, flush),
    }, Options{JWTSecret: testSecret})
    return a
}

func token(t *testing.T, id uint64, role model.Role) string {
    tok, err := utils.NewAccessToken(testSecret, id, "someone@example.com", string(role), 5)
    require.NoError(t, err)
    return tok.Token
}

func (a *app) call(method, path, tok, body string) *httptest.ResponseRecorder {
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, path, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, path, nil)
    }
    if tok != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
    }
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    return rec
}

func TestEveryProtectedRouteHasPermissions(t *testing.T) {
    a := newApp(t)
    public := map[string]bool{
        "POST /v1/auth/register": true,
        "POST /v1/auth/login":    true,
        "POST /v1/auth/refresh":  true,
        "POST /v1/auth/logout":   true,
    }
    for _, r := range a.e.Routes() {
        if r.Method != http.MethodGet && r.Method != http.MethodPost {
            continue
        }
        if !strings.HasPrefix(r.Path, "/v1/") || strings.HasSuffix(r.Path, "*") {
            continue
        }
        key := r.Method + " " + r.Path
        if public[key] {
            continue
        }
        _, ok := Permissions[key]
        assert.True(t, ok, "no permission entry for %s", key)
    }
}

func TestHealth(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodGet, "/healthz", "", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())
}

func TestListStores_UserSeesOwnRating(t *testing.T) {
    a := newApp(t)
    lq := repository.StoreListQuery{Name: "Bakery", SortBy: "name", Limit: 10}
    a.stores.On("List", mock.Anything, lq).Return([]model.Store{{ID: 1, Name: "Bakery Store 1"}}, nil)
    a.stores.On("Count", mock.Anything, lq).Return(int64(1), nil)
    a.ratings.On("ListByStores", mock.Anything, []uint64{1}).Return(map[uint64][]model.Rating{
        1: {{StoreID: 1, UserID: 7, Value: 4}, {StoreID: 1, UserID: 8, Value: 2}},
    }, nil)

    rec := a.call(http.MethodGet, "/v1/stores?searchName=Bakery&sortBy=name&order=asc", token(t, 7, model.RoleUser), "")
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

    var page struct {
        Items []struct {
            Name          string  `json:"name"`
            OverallRating float64 `json:"overallRating"`
            MyRating      *int    `json:"myRating"`
        } `json:"items"`
        Total int64 `json:"total"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
    assert.Equal(t, int64(1), page.Total)
    require.Len(t, page.Items, 1)
    assert.Equal(t, 3.0, page.Items[0].OverallRating)
    require.NotNil(t, page.Items[0].MyRating)
    assert.Equal(t, 4, *page.Items[0].MyRating)
}

func TestListStores_RejectsUnknownSort(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodGet, "/v1/stores?sortBy=popularity", token(t, 7, model.RoleUser), "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), `"field":"sortBy"`)
}

func TestListStores_OwnerForbidden(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodGet, "/v1/stores", token(t, 3, model.RoleOwner), "")
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetStore_NotFound(t *testing.T) {
    a := newApp(t)
    a.stores.On("GetByID", mock.Anything, uint64(99)).Return(nil, repository.ErrStoreNotFound)
    rec := a.call(http.MethodGet, "/v1/stores/99", token(t, 3, model.RoleOwner), "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStore_MyRatingNull(t *testing.T) {
    a := newApp(t)
    a.stores.On("GetByID", mock.Anything, uint64(5)).Return(&model.Store{ID: 5, Name: "S"}, nil)
    a.ratings.On("ListByStores", mock.Anything, []uint64{5}).Return(map[uint64][]model.Rating{}, nil)
    rec := a.call(http.MethodGet, "/v1/stores/5", token(t, 1, model.RoleUser), "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"myRating":null`)
    assert.Contains(t, rec.Body.String(), `"overallRating":0`)
}

func TestSubmitRating(t *testing.T) {
    a := newApp(t)
    tok := token(t, 7, model.RoleUser)

    rec := a.call(http.MethodPost, "/v1/stores/2/rating", tok, `{"rating":6}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    rec = a.call(http.MethodPost, "/v1/stores/2/rating", tok, `{"rating":0}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    a.stores.On("GetByID", mock.Anything, uint64(2)).Return(&model.Store{ID: 2}, nil)
    a.ratings.On("Upsert", mock.Anything, uint64(2), uint64(7), 5).Return(&model.Rating{ID: 1, StoreID: 2, UserID: 7, Value: 5}, nil)
    a.events.On("PublishRatingSubmitted", mock.Anything, mock.Anything).Return(nil)

    rec = a.call(http.MethodPost, "/v1/stores/2/rating", tok, `{"rating":5}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Contains(t, rec.Body.String(), `"rating":5`)
    assert.Equal(t, 1, a.flushed)

    // admins may browse but not rate
    rec = a.call(http.MethodPost, "/v1/stores/2/rating", token(t, 1, model.RoleAdmin), `{"rating":5}`)
    assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnerDashboard_EmptyState(t *testing.T) {
    a := newApp(t)
    a.stores.On("GetByOwner", mock.Anything, uint64(3)).Return(nil, repository.ErrStoreNotFound)
    rec := a.call(http.MethodGet, "/v1/owner/dashboard", token(t, 3, model.RoleOwner), "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"store":null,"raters":[]}`, rec.Body.String())
}

func TestRegister_Validation(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodPost, "/v1/auth/register", "", `{"name":"Too short","email":"a@b.co","password":"weak"}`)
    require.Equal(t, http.StatusBadRequest, rec.Code)
    body := rec.Body.String()
    assert.Contains(t, body, `"field":"name"`)
    assert.Contains(t, body, `"field":"password"`)
}

func TestRegister_Created(t *testing.T) {
    a := newApp(t)
    a.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
        return u.Role == model.RoleUser
    })).Run(func(args mock.Arguments) {
        args.Get(1).(*model.User).ID = 42
    }).Return(nil)

    rec := a.call(http.MethodPost, "/v1/auth/register", "",
        `{"name":"Somebody With A Long Name","email":"new@example.com","password":"Password@123","role":"ADMIN"}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    assert.Contains(t, rec.Body.String(), `"role":"USER"`)
    assert.NotContains(t, rec.Body.String(), "password")
    assert.Equal(t, 1, a.flushed)
}

func TestRegister_DuplicateDoesNotInvalidate(t *testing.T) {
    a := newApp(t)
    a.users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailExists)

    rec := a.call(http.MethodPost, "/v1/auth/register", "",
        `{"name":"Somebody With A Long Name","email":"taken@example.com","password":"Password@123"}`)
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Equal(t, 0, a.flushed)
}

func TestChangePassword_WrongOldPasswordIsBadRequest(t *testing.T) {
    a := newApp(t)
    hash, err := utils.HashPassword("Password@123", bcrypt.MinCost)
    require.NoError(t, err)
    a.users.On("GetByID", mock.Anything, uint64(7)).Return(&model.User{ID: 7, PasswordHash: hash, Role: model.RoleUser}, nil)

    rec := a.call(http.MethodPost, "/v1/auth/change-password", token(t, 7, model.RoleUser),
        `{"oldPassword":"Wrong@123","newPassword":"NewPass#456"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.JSONEq(t, `{"error":"old password is incorrect"}`, rec.Body.String())
    a.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminDashboard(t *testing.T) {
    a := newApp(t)
    a.users.On("Count", mock.Anything, repository.UserListQuery{}).Return(int64(3), nil)
    a.stores.On("Count", mock.Anything, repository.StoreListQuery{}).Return(int64(2), nil)
    a.ratings.On("Count", mock.Anything).Return(int64(5), nil)

    rec := a.call(http.MethodGet, "/v1/admin/dashboard", token(t, 1, model.RoleUser), "")
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = a.call(http.MethodGet, "/v1/admin/dashboard", token(t, 1, model.RoleAdmin), "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"totalUsers":3,"totalStores":2,"totalRatings":5}`, rec.Body.String())
}

func TestAdminCreateStore_InvalidatesCache(t *testing.T) {
    a := newApp(t)
    ownerID := uint64(4)
    a.users.On("GetByID", mock.Anything, ownerID).Return(&model.User{ID: ownerID, Role: model.RoleOwner}, nil)
    a.stores.On("Create", mock.Anything, mock.Anything).Return(nil)

    rec := a.call(http.MethodPost, "/v1/admin/stores", token(t, 1, model.RoleAdmin),
        `{"name":"Bakery Store 9","email":"b9@example.com","address":"9 Baker Street","ownerUserId":4}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    assert.Equal(t, 1, a.flushed)
}

func TestAdminCreateStore_NonOwner(t *testing.T) {
    a := newApp(t)
    a.users.On("GetByID", mock.Anything, uint64(5)).Return(&model.User{ID: 5, Role: model.RoleUser}, nil)

    rec := a.call(http.MethodPost, "/v1/admin/stores", token(t, 1, model.RoleAdmin),
        `{"name":"X","email":"x@example.com","address":"addr","ownerUserId":5}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, 0, a.flushed)
}

func TestLogin_InvalidCredentials(t *testing.T) {
    a := newApp(t)
    a.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrUserNotFound)
    rec := a.call(http.MethodPost, "/v1/auth/login", "", `{"email":"nobody@example.com","password":"Password@123"}`)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_RequiresSomething(t *testing.T) {
    a := newApp(t)
    rec := a.call(http.MethodPost, "/v1/auth/logout", "", `{}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    a.tokens.On("RevokeAllForUser", mock.Anything, uint64(7)).Return(nil)
    rec = a.call(http.MethodPost, "/v1/auth/logout", token(t, 7, model.RoleUser), "")
    assert.Equal(t, http.StatusNoContent, rec.Code)
}
