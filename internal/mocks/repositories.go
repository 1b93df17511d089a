// Package mocks holds testify mocks for the service layer's collaborators.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
)

type StoreRepository struct{ mock.Mock }

func (m *StoreRepository) Create(ctx context.Context, s *model.Store) error {
	return m.Called(ctx, s).Error(0)
}

func (m *StoreRepository) GetByID(ctx context.Context, id uint64) (*model.Store, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(*model.Store)
	return st, args.Error(1)
}

func (m *StoreRepository) GetByOwner(ctx context.Context, ownerID uint64) (*model.Store, error) {
	args := m.Called(ctx, ownerID)
	st, _ := args.Get(0).(*model.Store)
	return st, args.Error(1)
}

func (m *StoreRepository) List(ctx context.Context, q repository.StoreListQuery) ([]model.Store, error) {
	args := m.Called(ctx, q)
	out, _ := args.Get(0).([]model.Store)
	return out, args.Error(1)
}

func (m *StoreRepository) Count(ctx context.Context, q repository.StoreListQuery) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StoreRepository) ListByOwners(ctx context.Context, ownerIDs []uint64) ([]model.Store, error) {
	args := m.Called(ctx, ownerIDs)
	out, _ := args.Get(0).([]model.Store)
	return out, args.Error(1)
}

type RatingRepository struct{ mock.Mock }

func (m *RatingRepository) Upsert(ctx context.Context, storeID, userID uint64, value int) (*model.Rating, error) {
	args := m.Called(ctx, storeID, userID, value)
	rt, _ := args.Get(0).(*model.Rating)
	return rt, args.Error(1)
}

func (m *RatingRepository) ListByStores(ctx context.Context, storeIDs []uint64) (map[uint64][]model.Rating, error) {
	args := m.Called(ctx, storeIDs)
	out, _ := args.Get(0).(map[uint64][]model.Rating)
	return out, args.Error(1)
}

func (m *RatingRepository) ListRaters(ctx context.Context, storeID uint64) ([]model.RaterView, error) {
	args := m.Called(ctx, storeID)
	out, _ := args.Get(0).([]model.RaterView)
	return out, args.Error(1)
}

func (m *RatingRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context, q repository.UserListQuery) ([]model.User, error) {
	args := m.Called(ctx, q)
	out, _ := args.Get(0).([]model.User)
	return out, args.Error(1)
}

func (m *UserRepository) Count(ctx context.Context, q repository.UserListQuery) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

type TokenRepository struct{ mock.Mock }

func (m *TokenRepository) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return m.Called(ctx, userID, tokenHash, exp).Error(0)
}

func (m *TokenRepository) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *TokenRepository) Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error {
	return m.Called(ctx, oldHash, userID, newHash, exp).Error(0)
}

func (m *TokenRepository) RevokeByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *TokenRepository) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

type EventPublisher struct{ mock.Mock }

func (m *EventPublisher) PublishRatingSubmitted(ctx context.Context, ev queue.RatingSubmittedEvent) error {
	return m.Called(ctx, ev).Error(0)
}
