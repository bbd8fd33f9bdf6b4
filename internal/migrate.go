package internal

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Migrations ship inside the binary so a deploy is a single artifact.
//
//go:embed migrations/*.sql
var migrationFS embed.FS

// RunMigrations applies any pending schema migrations. Called on startup
// before the server accepts traffic.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrationFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
