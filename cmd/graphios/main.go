// graphios - ship Nagios perfdata to time-series backends
//
// graphios reads check results (JSON records carrying parsed perfdata) from
// a file or standard input and hands them to every enabled backend:
// InfluxDB, carbon, MQTT, a local SQLite archive or stdout.
//
// The exit status is 1 when the configuration is invalid or when any
// backend did not account for every record, so the collector can keep the
// spool file and retry.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianlzt/graphios/internal/backend"
	"github.com/adrianlzt/graphios/internal/backend/carbon"
	"github.com/adrianlzt/graphios/internal/backend/influxdb"
	"github.com/adrianlzt/graphios/internal/backend/mqtt"
	"github.com/adrianlzt/graphios/internal/backend/sqlite"
	"github.com/adrianlzt/graphios/internal/backend/stdout"
	"github.com/adrianlzt/graphios/internal/infrastructure/config"
	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	"github.com/adrianlzt/graphios/internal/perfdata"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/graphios.yaml"

// errUndelivered is returned when a backend reported fewer records than it was given.
var errUndelivered = errors.New("not every record was delivered")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run loads the configuration, reads the records and sends them to every
// enabled backend. It is separated from main for testability.
func run(ctx context.Context, stdin io.Reader, out io.Writer) error {
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Default().Critical("invalid configuration", "config", configPath, "error", err)
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting graphios",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
		"backends", cfg.Backends,
	)

	records, err := readRecords(cfg.Input.Path, stdin)
	if err != nil {
		return err
	}
	log.Info("records loaded", "records", len(records), "input", cfg.Input.Path)

	backends, err := buildBackends(cfg, log, out)
	if err != nil {
		log.Critical("invalid backend configuration", "error", err)
		return err
	}
	set := backend.NewSet(log, backends...)
	log.Debug("backends ready", "backends", set.Names())
	defer func() {
		if closeErr := set.Close(); closeErr != nil {
			log.Error("error closing backends", "error", closeErr)
		}
	}()

	delivered, err := set.Send(ctx, records)
	set.LogCounts()
	if err != nil {
		return fmt.Errorf("sending records: %w", err)
	}
	if !delivered {
		return errUndelivered
	}

	log.Info("graphios finished", "records", len(records))
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAPHIOS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAPHIOS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// readRecords decodes the records at path, or from stdin when path is "-".
func readRecords(path string, stdin io.Reader) ([]*perfdata.Record, error) {
	if path == "-" {
		records, err := perfdata.Decode(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading records from stdin: %w", err)
		}
		return records, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	records, err := perfdata.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading records from %s: %w", path, err)
	}
	return records, nil
}

// buildBackends creates the enabled backends in configuration order.
// Backends already built are closed when a later one fails.
func buildBackends(cfg *config.Config, log *logging.Logger, out io.Writer) ([]backend.Backend, error) {
	opts := backend.Options(cfg.Options)

	var built []backend.Backend
	for _, name := range cfg.Backends {
		b, err := newBackend(name, opts, log, out)
		if err != nil {
			_ = backend.NewSet(log, built...).Close()
			return nil, fmt.Errorf("configuring %s backend: %w", name, err)
		}
		built = append(built, b)
	}
	return built, nil
}

func newBackend(name string, opts backend.Options, log *logging.Logger, out io.Writer) (backend.Backend, error) {
	switch name {
	case config.BackendInfluxDB:
		return influxdb.New(opts, log)
	case config.BackendStdout:
		return stdout.NewWithWriter(out, log), nil
	case config.BackendCarbon:
		return carbon.New(opts, log)
	case config.BackendMQTT:
		return mqtt.New(opts, log)
	case config.BackendSQLite:
		return sqlite.New(opts, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
