package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate runs a goose command (up, down, status, reset) against the
// embedded migration set.
func Migrate(db *sql.DB, command string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	switch command {
	case "up":
		return goose.Up(db, migrationsDir)
	case "down":
		return goose.Down(db, migrationsDir)
	case "status":
		return goose.Status(db, migrationsDir)
	case "reset":
		return goose.Reset(db, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}
