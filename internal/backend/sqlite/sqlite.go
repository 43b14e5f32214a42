package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adrianlzt/graphios/internal/backend"
	"github.com/adrianlzt/graphios/internal/infrastructure/database"
	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	"github.com/adrianlzt/graphios/internal/perfdata"
	"github.com/adrianlzt/graphios/internal/point"
	"github.com/adrianlzt/graphios/migrations"
)

// Name is the backend name used in graphios.yaml.
const Name = "sqlite"

// Option keys read by this backend.
const (
	OptPath        = "sqlite_path"
	OptBusyTimeout = "sqlite_busy_timeout"
	OptExtraTags   = "sqlite_extra_tags"
)

const (
	defaultPath        = "./data/graphios.db"
	defaultBusyTimeout = 5 // seconds

	migrateTimeout = 30 * time.Second
)

const insertPoint = `
	INSERT INTO points (project, measurement, host, time, tags, fields, line, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Config is the validated configuration of the sqlite backend.
type Config struct {
	Path        string
	BusyTimeout time.Duration
	ExtraTags   map[string]string
}

// ParseConfig builds a Config from the backend options.
func ParseConfig(opts backend.Options) (Config, error) {
	busy, err := opts.PositiveInt(OptBusyTimeout, defaultBusyTimeout)
	if err != nil {
		return Config{}, err
	}
	extraTags, err := opts.StringMap(OptExtraTags)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Path:        opts.String(OptPath, defaultPath),
		BusyTimeout: time.Duration(busy) * time.Second,
		ExtraTags:   extraTags,
	}, nil
}

// Backend archives every point in a local SQLite database.
type Backend struct {
	cfg    Config
	db     *database.DB
	logger *logging.Logger
	now    func() time.Time
}

// New opens the archive and brings its schema up to date.
func New(opts backend.Options, logger *logging.Logger) (*Backend, error) {
	cfg, err := ParseConfig(opts)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     true,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Already failing
		return nil, fmt.Errorf("migrating %s: %w", cfg.Path, err)
	}

	logger = logger.With("backend", Name)
	logger.Info("sqlite backend initialised", "path", cfg.Path)

	return &Backend{cfg: cfg, db: db, logger: logger, now: time.Now}, nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Close closes the archive.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Send stores all records in a single transaction. A failed transaction
// stores nothing, is logged and makes Send report 0 records.
func (b *Backend) Send(ctx context.Context, records []*perfdata.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	batches := point.Group(records, b.cfg.ExtraTags)
	createdAt := b.now().UTC().Format(time.RFC3339)

	err := b.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertPoint)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, project := range batches.Projects() {
			for _, p := range batches[project] {
				if err := insert(ctx, stmt, project, p, createdAt); err != nil {
					return err
				}
			}
		}
		return nil
	})

	switch {
	case err == nil:
		b.logger.Debug("points archived", "points", batches.Len())
		return len(records), nil
	case ctx.Err() != nil:
		return 0, ctx.Err()
	default:
		b.logger.Critical("error archiving points", "points", batches.Len(), "error", err)
		return 0, nil
	}
}

func insert(ctx context.Context, stmt *sql.Stmt, project string, p *point.Point, createdAt string) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags of %s: %w", p.Measurement, err)
	}
	fields, err := json.Marshal(p.Fields)
	if err != nil {
		return fmt.Errorf("encoding fields of %s: %w", p.Measurement, err)
	}
	line, err := p.Line()
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, project, p.Measurement, p.Tags["host"], p.Time.Unix(),
		string(tags), string(fields), line, createdAt)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", p.Measurement, err)
	}
	return nil
}
