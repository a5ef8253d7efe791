// ABOUTME: Embedded goose SQL migrations for the SQLite backend.
// ABOUTME: Applied by storage.RunMigrations on every open.
package migrations

import "embed"

// FS holds the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
