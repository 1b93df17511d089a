package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/store-rating/internal/model"
)

// StoreListQuery filters and windows a store listing.  Name and Address are
// optional case-insensitive substring filters.  SortBy accepts the columns
// in storeSortColumns; any other value keeps storage order (by id).
type StoreListQuery struct {
	Name    string
	Address string
	SortBy  string
	Desc    bool
	Limit   int
	Offset  int
}

// storeSortColumns lists the sort keys the database can order by.
// overallRating is absent on purpose: it is derived per request.
var storeSortColumns = map[string]string{
	"name":      "s.name",
	"address":   "s.address",
	"createdAt": "s.created_at",
}

const storeColumns = "s.id, s.name, s.email, s.address, s.owner_user_id, s.created_at, s.updated_at"

// StoreRepo encapsulates all database queries related to stores.
type StoreRepo struct {
	db *sql.DB
}

func NewStoreRepo(db *sql.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

func storeWhere(q StoreListQuery) (string, []any) {
	var conds []string
	var args []any
	if q.Name != "" {
		conds = append(conds, "LOWER(s.name) LIKE ?")
		args = append(args, containsPattern(q.Name))
	}
	if q.Address != "" {
		conds = append(conds, "LOWER(s.address) LIKE ?")
		args = append(args, containsPattern(q.Address))
	}
	return whereClause(conds), args
}

func buildStoreListSQL(q StoreListQuery) (string, []any) {
	cond, args := storeWhere(q)
	order := "s.id ASC"
	if col, ok := storeSortColumns[q.SortBy]; ok {
		// id breaks ties so equal names page deterministically
		order = col + " " + direction(q.Desc) + ", s.id ASC"
	}
	query := "SELECT " + storeColumns + " FROM stores s WHERE " + cond +
		" ORDER BY " + order + " LIMIT ? OFFSET ?"
	return query, append(args, q.Limit, q.Offset)
}

func buildStoreCountSQL(q StoreListQuery) (string, []any) {
	cond, args := storeWhere(q)
	return "SELECT COUNT(*) FROM stores s WHERE " + cond, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (model.Store, error) {
	var (
		s     model.Store
		owner sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Address, &owner, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return model.Store{}, err
	}
	if owner.Valid {
		id := uint64(owner.Int64)
		s.OwnerUserID = &id
	}
	return s, nil
}

func (r *StoreRepo) queryStores(ctx context.Context, query string, args ...any) ([]model.Store, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StoreRepo) getOne(ctx context.Context, where string, arg any) (*model.Store, error) {
	q := "SELECT " + storeColumns + " FROM stores s WHERE " + where + " ORDER BY s.id LIMIT 1"
	s, err := scanStore(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a store and reads the row back so timestamps are populated.
// A duplicate email yields ErrEmailExists.
func (r *StoreRepo) Create(ctx context.Context, s *model.Store) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO stores (name, email, address, owner_user_id) VALUES (?, ?, ?, ?)",
		s.Name, s.Email, s.Address, s.OwnerUserID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

// GetByID returns ErrStoreNotFound when no row exists.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (*model.Store, error) {
	return r.getOne(ctx, "s.id = ?", id)
}

// GetByEmail looks a store up by its unique contact address.
func (r *StoreRepo) GetByEmail(ctx context.Context, email string) (*model.Store, error) {
	return r.getOne(ctx, "s.email = ?", email)
}

// GetByOwner returns the first store owned by ownerID.  Ownership of more
// than one store is not prevented, so the lowest id wins.
func (r *StoreRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Store, error) {
	return r.getOne(ctx, "s.owner_user_id = ?", ownerID)
}

// List returns one page of stores matching q.
func (r *StoreRepo) List(ctx context.Context, q StoreListQuery) ([]model.Store, error) {
	query, args := buildStoreListSQL(q)
	return r.queryStores(ctx, query, args...)
}

// Count returns how many stores match q's filters; paging and sorting are ignored.
func (r *StoreRepo) Count(ctx context.Context, q StoreListQuery) (int64, error) {
	query, args := buildStoreCountSQL(q)
	var total int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

// ListByOwners returns every store owned by any of ownerIDs.
func (r *StoreRepo) ListByOwners(ctx context.Context, ownerIDs []uint64) ([]model.Store, error) {
	if len(ownerIDs) == 0 {
		return []model.Store{}, nil
	}
	query := "SELECT " + storeColumns + " FROM stores s WHERE s.owner_user_id IN (" +
		placeholders(len(ownerIDs)) + ") ORDER BY s.id"
	return r.queryStores(ctx, query, uint64Args(ownerIDs)...)
}
