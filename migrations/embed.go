// Package migrations embeds the topology database schema into the binary.
package migrations

import "embed"

// FS holds the migration files at its root; pass "." as the directory to
// database.DB.Migrate.
//
//go:embed *.sql
var FS embed.FS
