package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/store-rating/internal/model"
)

// UserListQuery filters and windows the admin user listing.  Name and Email
// are case-insensitive substring filters, Role an exact match.
type UserListQuery struct {
	Name   string
	Email  string
	Role   model.Role
	SortBy string
	Desc   bool
	Limit  int
	Offset int
}

var userSortColumns = map[string]string{
	"name":      "u.name",
	"email":     "u.email",
	"role":      "u.role",
	"createdAt": "u.created_at",
}

const userColumns = "u.id, u.name, u.email, u.password_hash, u.address, u.role, u.created_at, u.updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userWhere(q UserListQuery) (string, []any) {
	var conds []string
	var args []any
	if q.Name != "" {
		conds = append(conds, "LOWER(u.name) LIKE ?")
		args = append(args, containsPattern(q.Name))
	}
	if q.Email != "" {
		conds = append(conds, "LOWER(u.email) LIKE ?")
		args = append(args, containsPattern(q.Email))
	}
	if q.Role != "" {
		conds = append(conds, "u.role = ?")
		args = append(args, string(q.Role))
	}
	return whereClause(conds), args
}

func buildUserListSQL(q UserListQuery) (string, []any) {
	cond, args := userWhere(q)
	order := "u.id ASC"
	if col, ok := userSortColumns[q.SortBy]; ok {
		order = col + " " + direction(q.Desc) + ", u.id ASC"
	}
	query := "SELECT " + userColumns + " FROM users u WHERE " + cond +
		" ORDER BY " + order + " LIMIT ? OFFSET ?"
	return query, append(args, q.Limit, q.Offset)
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u       model.User
		address sql.NullString
		role    string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &address, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if address.Valid {
		a := address.String
		u.Address = &a
	}
	return u, nil
}

// Create inserts u (PasswordHash must already be set) and reloads it.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, address, role) VALUES (?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.Address, string(u.Role))
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
	*u = *created
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u WHERE "+where+" LIMIT 1", arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "u.email = ?", NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "u.id = ?", id)
}

// List returns one page of users matching q.
func (r *UserRepo) List(ctx context.Context, q UserListQuery) ([]model.User, error) {
	query, args := buildUserListSQL(q)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns how many users match q's filters.
func (r *UserRepo) Count(ctx context.Context, q UserListQuery) (int64, error) {
	cond, args := userWhere(q)
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users u WHERE "+cond, args...).Scan(&n)
	return n, err
}

// UpdatePassword replaces the stored hash.  ErrUserNotFound when id is unknown.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
