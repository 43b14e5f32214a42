// Package migrations embeds the SQLite archive schema into the binary.
//
// Files are named <version>_<name>.up.sql and applied, forward only, with
// database.DB.Migrate(ctx, migrations.FS).
package migrations

import "embed"

// FS holds every migration file of this directory.
//
//go:embed *.sql
var FS embed.FS
