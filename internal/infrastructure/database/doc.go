// Package database owns the SQLite file behind the sqlite backend.
//
// Open applies the connection settings graphios relies on: a busy timeout,
// foreign keys and optionally WAL so that readers can query the archive
// while points are appended. Schema changes come from numbered
// <version>_<name>.up.sql files in any fs.FS, normally the embedded
// migrations package. They are applied forward only:
//
//	db, err := database.Open(database.Config{Path: "./data/graphios.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations only add. A new column must be nullable or carry a default so
// that rows written by older releases stay valid.
package database
