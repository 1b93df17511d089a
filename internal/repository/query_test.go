package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/store-rating/internal/model"
)

func TestBuildStoreListSQL_NoFilter(t *testing.T) {
	query, args := buildStoreListSQL(StoreListQuery{Limit: 10, Offset: 0})

	assert.Contains(t, query, "WHERE 1=1")
	assert.Contains(t, query, "ORDER BY s.id ASC LIMIT ? OFFSET ?")
	assert.Equal(t, []any{10, 0}, args)
}

func TestBuildStoreListSQL_FiltersAndSort(t *testing.T) {
	query, args := buildStoreListSQL(StoreListQuery{
		Name:    "Bakery",
		Address: "Market",
		SortBy:  "name",
		Limit:   10,
		Offset:  10,
	})

	assert.Contains(t, query, "LOWER(s.name) LIKE ? AND LOWER(s.address) LIKE ?")
	assert.Contains(t, query, "ORDER BY s.name ASC, s.id ASC")
	assert.Equal(t, []any{"%bakery%", "%market%", 10, 10}, args)
}

func TestBuildStoreListSQL_Descending(t *testing.T) {
	query, _ := buildStoreListSQL(StoreListQuery{SortBy: "createdAt", Desc: true, Limit: 5})
	assert.Contains(t, query, "ORDER BY s.created_at DESC, s.id ASC")
}

func TestBuildStoreListSQL_RatingSortStaysInStorageOrder(t *testing.T) {
	query, _ := buildStoreListSQL(StoreListQuery{SortBy: "overallRating", Desc: true, Limit: 5})
	assert.Contains(t, query, "ORDER BY s.id ASC LIMIT")
	assert.NotContains(t, storeSortColumns, "overallRating")
	assert.Contains(t, storeSortColumns, "address")
}

func TestBuildStoreCountSQL_IgnoresPaging(t *testing.T) {
	query, args := buildStoreCountSQL(StoreListQuery{Name: "x", SortBy: "name", Limit: 10, Offset: 30})
	assert.Equal(t, "SELECT COUNT(*) FROM stores s WHERE LOWER(s.name) LIKE ?", query)
	assert.Equal(t, []any{"%x%"}, args)
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, containsPattern("50% OFF_now"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}

func TestBuildUserListSQL(t *testing.T) {
	query, args := buildUserListSQL(UserListQuery{
		Email:  "example.com",
		Role:   model.RoleOwner,
		SortBy: "email",
		Desc:   true,
		Limit:  20,
		Offset: 40,
	})

	assert.Contains(t, query, "LOWER(u.email) LIKE ? AND u.role = ?")
	assert.Contains(t, query, "ORDER BY u.email DESC, u.id ASC")
	assert.Equal(t, []any{"%example.com%", "OWNER", 20, 40}, args)
}

func TestBuildUserListSQL_UnknownSortFallsBack(t *testing.T) {
	query, _ := buildUserListSQL(UserListQuery{SortBy: "password_hash", Limit: 1})
	assert.Contains(t, query, "ORDER BY u.id ASC")
	assert.NotContains(t, query, "ORDER BY password_hash")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
	assert.Equal(t, []any{uint64(1), uint64(2)}, uint64Args([]uint64{1, 2}))
}

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, isDuplicateKey(dup))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicateKey(errors.New("1062")))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestUpsertRatingSQL_OverwritesOnlyTheValue(t *testing.T) {
	assert.True(t, strings.HasPrefix(upsertRatingSQL, "INSERT INTO ratings (store_id, user_id, rating)"))
	assert.Contains(t, upsertRatingSQL, "ON DUPLICATE KEY UPDATE rating = VALUES(rating)")
	assert.Equal(t, 3, strings.Count(upsertRatingSQL, "?"))

	update := upsertRatingSQL[strings.Index(upsertRatingSQL, "ON DUPLICATE KEY UPDATE"):]
	assert.NotContains(t, update, "created_at")
	assert.NotContains(t, update, "id =")
}
