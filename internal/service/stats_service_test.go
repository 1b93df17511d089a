package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/store-rating/internal/mocks"
	"github.com/iliyamo/store-rating/internal/repository"
)

func TestStatsDashboard(t *testing.T) {
	users := &mocks.UserRepository{}
	stores := &mocks.StoreRepository{}
	ratings := &mocks.RatingRepository{}
	ctx := context.Background()
	users.On("Count", ctx, repository.UserListQuery{}).Return(int64(23), nil)
	stores.On("Count", ctx, repository.StoreListQuery{}).Return(int64(15), nil)
	ratings.On("Count", ctx).Return(int64(120), nil)

	got, err := NewStatsService(users, stores, ratings).Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(23), got.TotalUsers)
	assert.Equal(t, int64(15), got.TotalStores)
	assert.Equal(t, int64(120), got.TotalRatings)
}
