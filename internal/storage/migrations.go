// ABOUTME: Applies embedded goose migrations to the SQLite database.
// ABOUTME: Goose logging is silenced so the MCP stdio channel stays clean.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/elliot226/1hp-troubleshooter-sub000/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending database migrations using goose.
func RunMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
