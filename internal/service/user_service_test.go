package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/store-rating/internal/mocks"
	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

func newUserService() (*UserService, *mocks.UserRepository, *mocks.StoreRepository, *mocks.RatingRepository) {
	users := &mocks.UserRepository{}
	stores := &mocks.StoreRepository{}
	ratings := &mocks.RatingRepository{}
	return NewUserService(users, stores, ratings, bcrypt.MinCost), users, stores, ratings
}

func TestRegister_ForcesUserRole(t *testing.T) {
	svc, users, _, _ := newUserService()
	ctx := context.Background()
	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleUser && utils.VerifyPassword(u.PasswordHash, "Password@123")
	})).Return(nil)

	u, err := svc.Register(ctx, NewUser{
		Name:     "A name that is long enough",
		Email:    "someone@example.com",
		Password: "Password@123",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)
	users.AssertExpectations(t)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, users, _, _ := newUserService()
	ctx := context.Background()
	users.On("Create", ctx, mock.Anything).Return(repository.ErrEmailExists)

	_, err := svc.CreateUser(ctx, NewUser{Email: "dup@example.com", Password: "Password@123", Role: model.RoleOwner})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestListUsers_OwnerStoreRating(t *testing.T) {
	svc, users, stores, ratings := newUserService()
	ctx := context.Background()
	ownerID := uint64(2)
	lq := repository.UserListQuery{Role: model.RoleOwner, Limit: 10}

	users.On("List", ctx, lq).Return([]model.User{
		{ID: 1, Role: model.RoleUser},
		{ID: ownerID, Role: model.RoleOwner},
	}, nil)
	users.On("Count", ctx, lq).Return(int64(2), nil)
	stores.On("ListByOwners", ctx, []uint64{ownerID}).Return([]model.Store{
		{ID: 10, OwnerUserID: &ownerID},
		{ID: 11, OwnerUserID: &ownerID},
	}, nil)
	ratings.On("ListByStores", ctx, []uint64{10, 11}).Return(map[uint64][]model.Rating{
		10: {{StoreID: 10, Value: 4}, {StoreID: 10, Value: 5}},
		11: {{StoreID: 11, Value: 3}},
	}, nil)

	page, err := svc.ListUsers(ctx, UserQuery{Role: model.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Nil(t, page.Items[0].StoreRating)
	require.NotNil(t, page.Items[1].StoreRating)
	assert.InDelta(t, 3.75, *page.Items[1].StoreRating, 1e-9)
}

func TestGetUser_NotFound(t *testing.T) {
	svc, users, _, _ := newUserService()
	ctx := context.Background()
	users.On("GetByID", ctx, uint64(42)).Return(nil, repository.ErrUserNotFound)

	_, err := svc.GetUser(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
