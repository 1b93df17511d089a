package service

import (
	"context"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
)

// StatsService produces the administrator dashboard counters.
type StatsService struct {
	users   UserRepository
	stores  StoreRepository
	ratings RatingRepository
}

func NewStatsService(users UserRepository, stores StoreRepository, ratings RatingRepository) *StatsService {
	return &StatsService{users: users, stores: stores, ratings: ratings}
}

func (s *StatsService) Dashboard(ctx context.Context) (model.DashboardStats, error) {
	var (
		out model.DashboardStats
		err error
	)
	if out.TotalUsers, err = s.users.Count(ctx, repository.UserListQuery{}); err != nil {
		return model.DashboardStats{}, err
	}
	if out.TotalStores, err = s.stores.Count(ctx, repository.StoreListQuery{}); err != nil {
		return model.DashboardStats{}, err
	}
	if out.TotalRatings, err = s.ratings.Count(ctx); err != nil {
		return model.DashboardStats{}, err
	}
	return out, nil
}
