// Package repository holds the MySQL data access layer.  The sentinel
// errors below let services and handlers tell failure scenarios apart
// without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreNotFound is returned when no store matches the lookup.
	ErrStoreNotFound = errors.New("store not found")
	// ErrEmailExists signals a unique email violation on users or stores.
	ErrEmailExists = errors.New("email already exists")
	// ErrInvalidRefresh covers unknown, revoked and expired refresh tokens.
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
