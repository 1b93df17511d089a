package service

import (
	"context"
	"time"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
)

// The interfaces below are satisfied by the MySQL repositories and by the
// testify mocks in internal/mocks.

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) error
	GetByID(ctx context.Context, id uint64) (*model.Store, error)
	GetByOwner(ctx context.Context, ownerID uint64) (*model.Store, error)
	List(ctx context.Context, q repository.StoreListQuery) ([]model.Store, error)
	Count(ctx context.Context, q repository.StoreListQuery) (int64, error)
	ListByOwners(ctx context.Context, ownerIDs []uint64) ([]model.Store, error)
}

type RatingRepository interface {
	Upsert(ctx context.Context, storeID, userID uint64, value int) (*model.Rating, error)
	ListByStores(ctx context.Context, storeIDs []uint64) (map[uint64][]model.Rating, error)
	ListRaters(ctx context.Context, storeID uint64) ([]model.RaterView, error)
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, q repository.UserListQuery) ([]model.User, error)
	Count(ctx context.Context, q repository.UserListQuery) (int64, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// RatingEventPublisher announces persisted ratings to downstream consumers.
type RatingEventPublisher interface {
	PublishRatingSubmitted(ctx context.Context, ev queue.RatingSubmittedEvent) error
}
