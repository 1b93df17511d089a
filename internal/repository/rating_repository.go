package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/store-rating/internal/model"
)

// RatingRepo persists store ratings.  The unique key on (store_id, user_id)
// is what makes resubmission an overwrite instead of a duplicate.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

const ratingColumns = "id, store_id, user_id, rating, created_at, updated_at"

// upsertRatingSQL relies on UNIQUE(store_id, user_id): a second submission
// for the pair updates the existing row in place.
const upsertRatingSQL = `INSERT INTO ratings (store_id, user_id, rating) VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE rating = VALUES(rating), updated_at = CURRENT_TIMESTAMP`

// Upsert stores value for the (storeID, userID) pair.  An existing row keeps
// its id and created_at; only rating and updated_at change.  The row is read
// back so callers receive the persisted record.
func (r *RatingRepo) Upsert(ctx context.Context, storeID, userID uint64, value int) (*model.Rating, error) {
	if _, err := r.db.ExecContext(ctx, upsertRatingSQL, storeID, userID, value); err != nil {
		return nil, err
	}
	var out model.Rating
	err := r.db.QueryRowContext(ctx,
		"SELECT "+ratingColumns+" FROM ratings WHERE store_id = ? AND user_id = ?",
		storeID, userID).Scan(&out.ID, &out.StoreID, &out.UserID, &out.Value, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertIfAbsent creates the rating only when the pair has none yet.  It
// reports whether a row was written.  Used by the seeder so reruns do not
// reshuffle existing ratings.
func (r *RatingRepo) InsertIfAbsent(ctx context.Context, storeID, userID uint64, value int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO ratings (store_id, user_id, rating) VALUES (?, ?, ?)",
		storeID, userID, value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListByStores returns the ratings of every store in storeIDs keyed by store
// id.  One query serves a whole listing page.
func (r *RatingRepo) ListByStores(ctx context.Context, storeIDs []uint64) (map[uint64][]model.Rating, error) {
	out := make(map[uint64][]model.Rating, len(storeIDs))
	if len(storeIDs) == 0 {
		return out, nil
	}
	q := "SELECT " + ratingColumns + " FROM ratings WHERE store_id IN (" + placeholders(len(storeIDs)) + ") ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, uint64Args(storeIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.StoreID, &rt.UserID, &rt.Value, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		out[rt.StoreID] = append(out[rt.StoreID], rt)
	}
	return out, rows.Err()
}

// ListRaters joins the store's ratings with their authors, newest rating first.
func (r *RatingRepo) ListRaters(ctx context.Context, storeID uint64) ([]model.RaterView, error) {
	const q = `SELECT u.id, u.name, u.email, u.address, r.rating, r.created_at
	           FROM ratings r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.store_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RaterView{}
	for rows.Next() {
		var (
			v       model.RaterView
			address sql.NullString
		)
		if err := rows.Scan(&v.UserID, &v.Name, &v.Email, &address, &v.Rating, &v.RatedAt); err != nil {
			return nil, err
		}
		if address.Valid {
			a := address.String
			v.Address = &a
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the number of ratings across all stores.
func (r *RatingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ratings").Scan(&n)
	return n, err
}
