package service

import (
	"context"
	"strings"

	"github.com/iliyamo/store-rating/internal/model"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/utils"
)

// NewUser is the input for registration and admin user creation.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Address  *string
	Role     model.Role
}

// UserQuery is the admin user listing request.
type UserQuery struct {
	Name   string
	Email  string
	Role   model.Role
	SortBy string
	Order  string
	Page   int
	Limit  int
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Items []model.UserListItem `json:"items"`
	Total int64                `json:"total"`
}

type UserService struct {
	users      UserRepository
	stores     StoreRepository
	ratings    RatingRepository
	bcryptCost int
}

func NewUserService(users UserRepository, stores StoreRepository, ratings RatingRepository, bcryptCost int) *UserService {
	if users == nil || stores == nil || ratings == nil {
		panic("nil repository passed to NewUserService")
	}
	return &UserService{users: users, stores: stores, ratings: ratings, bcryptCost: bcryptCost}
}

// Register creates a self-service account.  The role is always USER
// whatever the caller asked for.
func (s *UserService) Register(ctx context.Context, in NewUser) (*model.User, error) {
	in.Role = model.RoleUser
	return s.create(ctx, in)
}

// CreateUser is the admin path; an empty role defaults to USER.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in NewUser) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if in.Address != nil {
		a := strings.TrimSpace(*in.Address)
		in.Address = &a
	}
	u := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns a filtered page of users.  OWNER rows carry the mean of
// their stores' overall ratings.
func (s *UserService) ListUsers(ctx context.Context, q UserQuery) (UserPage, error) {
	_, limit, offset := normalizePage(q.Page, q.Limit)
	lq := repository.UserListQuery{
		Name:   strings.TrimSpace(q.Name),
		Email:  strings.TrimSpace(q.Email),
		Role:   q.Role,
		SortBy: q.SortBy,
		Desc:   isDesc(q.Order),
		Limit:  limit,
		Offset: offset,
	}
	users, err := s.users.List(ctx, lq)
	if err != nil {
		return UserPage{}, err
	}
	total, err := s.users.Count(ctx, lq)
	if err != nil {
		return UserPage{}, err
	}
	items, err := s.withStoreRatings(ctx, users)
	if err != nil {
		return UserPage{}, err
	}
	return UserPage{Items: items, Total: total}, nil
}

// GetUser returns a single user, enriched like the listing.
func (s *UserService) GetUser(ctx context.Context, id uint64) (*model.UserListItem, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.withStoreRatings(ctx, []model.User{*u})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *UserService) withStoreRatings(ctx context.Context, users []model.User) ([]model.UserListItem, error) {
	items := make([]model.UserListItem, len(users))
	var ownerIDs []uint64
	for i, u := range users {
		items[i] = model.UserListItem{User: u}
		if u.Role == model.RoleOwner {
			ownerIDs = append(ownerIDs, u.ID)
		}
	}
	if len(ownerIDs) == 0 {
		return items, nil
	}
	stores, err := s.stores.ListByOwners(ctx, ownerIDs)
	if err != nil || len(stores) == 0 {
		return items, err
	}
	storeIDs := make([]uint64, len(stores))
	for i, st := range stores {
		storeIDs[i] = st.ID
	}
	byStore, err := s.ratings.ListByStores(ctx, storeIDs)
	if err != nil {
		return nil, err
	}

	sums := map[uint64]float64{}
	counts := map[uint64]int{}
	for _, st := range stores {
		if st.OwnerUserID == nil {
			continue
		}
		sums[*st.OwnerUserID] += Aggregate(byStore[st.ID], nil).Average
		counts[*st.OwnerUserID]++
	}
	for i := range items {
		if n := counts[items[i].ID]; n > 0 {
			avg := sums[items[i].ID] / float64(n)
			items[i].StoreRating = &avg
		}
	}
	return items, nil
}
