// Package migrations embeds the goose SQL migrations so every binary carries
// its own schema.
package migrations

import "embed"

// FS holds the *.sql files applied by platform/db.RunMigrations.
//
//go:embed *.sql
var FS embed.FS
