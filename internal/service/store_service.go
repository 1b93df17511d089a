package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
)

// Store sort keys accepted by ListStores.
const (
	SortName          = "name"
	SortAddress       = "address"
	SortCreatedAt     = "createdAt"
	SortOverallRating = "overallRating"
)

// StoreQuery is a listing request.  ViewerID is set for the user-facing
// listing so every row carries the caller's own rating; the admin listing
// leaves it nil.
type StoreQuery struct {
	SearchName    string
	SearchAddress string
	SortBy        string
	Order         string
	Page          int
	Limit         int
	ViewerID      *uint64
}

// NewStore is the admin input for creating a store.
type NewStore struct {
	Name        string
	Email       string
	Address     string
	OwnerUserID *uint64
}

// Rater sort keys accepted by OwnerDashboard.
const (
	RaterSortRatedAt = "ratedAt"
	RaterSortRating  = "rating"
	RaterSortName    = "name"
)

// StoreService owns store listing, rating submission and the owner view.
type StoreService struct {
	stores  StoreRepository
	ratings RatingRepository
	users   UserRepository
	events  RatingEventPublisher // nil disables publishing
}

func NewStoreService(stores StoreRepository, ratings RatingRepository, users UserRepository, events RatingEventPublisher) *StoreService {
	if stores == nil || ratings == nil || users == nil {
		panic("nil repository passed to NewStoreService")
	}
	return &StoreService{stores: stores, ratings: ratings, users: users, events: events}
}

// ListStores returns one page of stores with their computed ratings.
//
// name, address and createdAt are ordered by the database.  overallRating
// cannot be: the page is fetched in storage order and then re-sorted in
// memory, so page N sorted by rating holds the Nth window of storage order,
// reordered within itself.  It is not the Nth window of a global rating
// ranking.
func (s *StoreService) ListStores(ctx context.Context, q StoreQuery) (model.StorePage, error) {
	_, limit, offset := normalizePage(q.Page, q.Limit)
	desc := isDesc(q.Order)
	lq := repository.StoreListQuery{
		Name:    strings.TrimSpace(q.SearchName),
		Address: strings.TrimSpace(q.SearchAddress),
		SortBy:  q.SortBy,
		Desc:    desc,
		Limit:   limit,
		Offset:  offset,
	}

	stores, err := s.stores.List(ctx, lq)
	if err != nil {
		return model.StorePage{}, err
	}
	total, err := s.stores.Count(ctx, lq)
	if err != nil {
		return model.StorePage{}, err
	}
	items, err := s.summarizeAll(ctx, stores, q.ViewerID)
	if err != nil {
		return model.StorePage{}, err
	}
	if q.SortBy == SortOverallRating {
		sortByOverallRating(items, desc)
	}
	return model.StorePage{Items: items, Total: total}, nil
}

// sortByOverallRating is stable: equal averages keep storage order.
func sortByOverallRating(items []model.StoreSummary, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return items[i].OverallRating > items[j].OverallRating
		}
		return items[i].OverallRating < items[j].OverallRating
	})
}

func (s *StoreService) summarizeAll(ctx context.Context, stores []model.Store, viewerID *uint64) ([]model.StoreSummary, error) {
	items := make([]model.StoreSummary, 0, len(stores))
	if len(stores) == 0 {
		return items, nil
	}
	ids := make([]uint64, len(stores))
	for i, st := range stores {
		ids[i] = st.ID
	}
	byStore, err := s.ratings.ListByStores(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, st := range stores {
		items = append(items, summarize(st, byStore[st.ID], viewerID))
	}
	return items, nil
}

// GetStore returns a single store with its overall rating.  MyRating is
// always null on this path.  Unknown ids yield repository.ErrStoreNotFound.
func (s *StoreService) GetStore(ctx context.Context, id uint64) (*model.StoreSummary, error) {
	st, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.summarizeAll(ctx, []model.Store{*st}, nil)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// CreateStore inserts a store.  A supplied owner must exist and hold the
// OWNER role.
func (s *StoreService) CreateStore(ctx context.Context, in NewStore) (*model.Store, error) {
	if in.OwnerUserID != nil {
		owner, err := s.users.GetByID(ctx, *in.OwnerUserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrInvalidOwner
			}
			return nil, err
		}
		if owner.Role != model.RoleOwner {
			return nil, ErrInvalidOwner
		}
	}
	st := &model.Store{
		Name:        strings.TrimSpace(in.Name),
		Email:       repository.NormalizeEmail(in.Email),
		Address:     strings.TrimSpace(in.Address),
		OwnerUserID: in.OwnerUserID,
	}
	if err := s.stores.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SubmitRating creates or overwrites the caller's rating for a store.
// Concurrent submissions for the same pair are serialised by the unique
// (store_id, user_id) key.  The event is best effort: publish failures are
// logged and do not fail the submission.
func (s *StoreService) SubmitRating(ctx context.Context, storeID, userID uint64, value int) (*model.Rating, error) {
	if value < 1 || value > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	rt, err := s.ratings.Upsert(ctx, storeID, userID, value)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		ev := queue.RatingSubmittedEvent{
			RatingID:    rt.ID,
			StoreID:     rt.StoreID,
			UserID:      rt.UserID,
			Value:       rt.Value,
			SubmittedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.events.PublishRatingSubmitted(ctx, ev); err != nil {
			log.Printf("store-service: publish rating %d failed: %v", rt.ID, err)
		}
	}
	return rt, nil
}

// RaterSort chooses the order of the owner dashboard rater list.  An empty
// SortBy means newest rating first.
type RaterSort struct {
	SortBy string
	Order  string
}

// OwnerDashboard returns the owner's store with its average and the list of
// raters.  An owner without a store gets the empty state, not an error.
func (s *StoreService) OwnerDashboard(ctx context.Context, ownerID uint64, rs RaterSort) (model.OwnerDashboard, error) {
	empty := model.OwnerDashboard{Store: nil, Raters: []model.RaterView{}}
	st, err := s.stores.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return empty, nil
		}
		return model.OwnerDashboard{}, err
	}
	raters, err := s.ratings.ListRaters(ctx, st.ID)
	if err != nil {
		return model.OwnerDashboard{}, err
	}
	values := make([]model.Rating, len(raters))
	for i, r := range raters {
		values[i] = model.Rating{StoreID: st.ID, UserID: r.UserID, Value: r.Rating}
	}
	sortRaters(raters, rs)
	return model.OwnerDashboard{
		Store: &model.DashboardStore{
			ID:            st.ID,
			Name:          st.Name,
			AverageRating: Aggregate(values, nil).Average,
		},
		Raters: raters,
	}, nil
}

// sortRaters orders raters by the requested key.  Order defaults to desc.
// User id breaks remaining ties so the order is total.
func sortRaters(raters []model.RaterView, rs RaterSort) {
	desc := rs.Order == "" || isDesc(rs.Order)
	cmp := func(a, b model.RaterView) int {
		switch rs.SortBy {
		case RaterSortRating:
			return a.Rating - b.Rating
		case RaterSortName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		default:
			return a.RatedAt.Compare(b.RatedAt)
		}
	}
	sort.SliceStable(raters, func(i, j int) bool {
		c := cmp(raters[i], raters[j])
		if c == 0 {
			return raters[i].UserID < raters[j].UserID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
