package influxdb

import (
	"context"
	"errors"

	"github.com/adrianlzt/graphios/internal/backend"
	cluster "github.com/adrianlzt/graphios/internal/infrastructure/influxdb"
	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	"github.com/adrianlzt/graphios/internal/perfdata"
	"github.com/adrianlzt/graphios/internal/point"
)

// Name is the backend name used in graphios.yaml.
const Name = "influxdb"

// Backend writes records to per-project databases on an InfluxDB cluster.
type Backend struct {
	cfg    Config
	client *cluster.Client
	logger *logging.Logger
}

// New parses the options and builds the cluster client.
func New(opts backend.Options, logger *logging.Logger) (*Backend, error) {
	cfg, err := ParseConfig(opts)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, logger)
}

// NewFromConfig builds the backend from an already validated Config.
func NewFromConfig(cfg Config, logger *logging.Logger) (*Backend, error) {
	client, err := cluster.Connect(cluster.Config{
		Servers:  cfg.Servers,
		UseSSL:   cfg.UseSSL,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With("backend", Name)
	logger.Info("influxdb backend initialised",
		"servers", client.Servers(),
		"ssl", cfg.UseSSL,
		"max_metrics", cfg.MaxMetrics,
	)

	// An unreachable cluster is not fatal here; Send reports the loss.
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = cluster.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.HealthCheck(ctx); err != nil {
		logger.Warn("no InfluxDB server answered ping", "servers", client.Servers(), "error", err)
	}

	return &Backend{cfg: cfg, client: client, logger: logger}, nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Close releases the cluster client.
func (b *Backend) Close() error {
	return b.client.Close()
}

// Send writes the records, one batch per project.
//
// When a project's database does not exist it is created and the batch is
// dropped; the next Send for that project succeeds. Any other failure is
// logged and makes Send report 0 records for the whole call, even if other
// projects were written, and the remaining projects are still attempted.
// Only cancellation of ctx itself is returned as an error.
func (b *Backend) Send(ctx context.Context, records []*perfdata.Record) (int, error) {
	count := len(records)
	batches := point.Group(records, b.cfg.ExtraTags)

	for _, project := range batches.Projects() {
		err := b.client.WritePoints(ctx, project, batches.ToWrite(project), b.cfg.MaxMetrics)
		if err == nil {
			b.logger.Debug("points written", "database", project, "points", len(batches[project]))
			continue
		}

		var clientErr *cluster.ClientError
		switch {
		case ctx.Err() != nil:
			return 0, ctx.Err()
		case errors.As(err, &clientErr) && clientErr.DatabaseNotFound():
			b.logger.Warn("database does not exist, creating", "database", project)
			b.createDatabase(ctx, project)
		case errors.Is(err, cluster.ErrTimeout):
			b.logger.Critical("timeout connecting to InfluxDB", "database", project, "error", err)
			count = 0
		case errors.Is(err, cluster.ErrConnectionFailed):
			b.logger.Critical("error connecting to InfluxDB", "database", project, "error", err)
			count = 0
		default:
			b.logger.Critical("error writing points to InfluxDB", "database", project, "error", err)
			count = 0
		}
	}

	return count, nil
}

// createDatabase creates a project database. Failures are only logged.
func (b *Backend) createDatabase(ctx context.Context, name string) {
	err := b.client.CreateDatabase(ctx, name)
	switch {
	case err == nil:
		b.logger.Info("database created", "database", name)
	case errors.Is(err, cluster.ErrTimeout):
		b.logger.Critical("timeout creating database", "database", name, "error", err)
	case errors.Is(err, cluster.ErrConnectionFailed):
		b.logger.Critical("error connecting to InfluxDB", "database", name, "error", err)
	default:
		b.logger.Critical("error creating database", "database", name, "error", err)
	}
}
