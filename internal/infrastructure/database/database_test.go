package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(dir string) Config
	}{
		{"wal in existing dir", func(dir string) Config {
			return Config{Path: filepath.Join(dir, "graphios.db"), WALMode: true}
		}},
		{"nested missing dirs", func(dir string) Config {
			return Config{Path: filepath.Join(dir, "data", "nested", "graphios.db"), BusyTimeout: time.Second}
		}},
		{"rollback journal", func(dir string) Config {
			return Config{Path: filepath.Join(dir, "plain.db")}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg(t.TempDir())

			db, err := Open(cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer db.Close() //nolint:errcheck // test cleanup

			if db.Path() != cfg.Path {
				t.Errorf("Path() = %q, want %q", db.Path(), cfg.Path)
			}
			info, err := os.Stat(cfg.Path)
			if err != nil {
				t.Fatalf("database file missing: %v", err)
			}
			if mode := info.Mode().Perm(); mode != fileMode {
				t.Errorf("file mode = %o, want %o", mode, fileMode)
			}
		})
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("Open() expected error for empty path")
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "default busy timeout",
			cfg:  Config{Path: "/var/lib/graphios/a.db"},
			want: "file:/var/lib/graphios/a.db?_busy_timeout=5000&_foreign_keys=on",
		},
		{
			name: "wal and custom timeout",
			cfg:  Config{Path: "a.db", WALMode: true, BusyTimeout: 2 * time.Second},
			want: "file:a.db?_busy_timeout=2000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dsn(tt.cfg); got != tt.want {
				t.Errorf("dsn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() after Close() expected error")
	}

	var nilDB *DB
	if err := nilDB.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestInTxCommit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustExec(t, db, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")

	err := db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES (?, ?)", "a", "1")
		return err
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}

	if n := countRows(t, db, "kv"); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestInTxRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustExec(t, db, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")

	errBoom := errors.New("boom")
	err := db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES (?, ?)", "a", "1"); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("InTx() error = %v, want %v", err, errBoom)
	}

	if n := countRows(t, db, "kv"); n != 0 {
		t.Errorf("rows = %d, want 0 after rollback", n)
	}
}

func TestInTxCancelled(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := db.InTx(ctx, func(*sql.Tx) error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("InTx() expected error for cancelled context")
	}
	if called {
		t.Error("fn called with cancelled context")
	}
}

// openTestDB opens a fresh database in a temp directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db"), WALMode: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	return db
}

func mustExec(t *testing.T, db *DB, query string, args ...any) {
	t.Helper()
	if _, err := db.ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}
