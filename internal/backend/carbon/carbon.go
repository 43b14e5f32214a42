package carbon

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/marpaia/graphite-golang"

	"github.com/adrianlzt/graphios/internal/backend"
	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	"github.com/adrianlzt/graphios/internal/perfdata"
)

// Name is the backend name used in graphios.yaml.
const Name = "carbon"

// Option keys read by this backend.
const (
	OptServer      = "carbon_server"
	OptReplacement = "carbon_replacement_character"
	OptBasePath    = "metric_base_path"
)

const (
	defaultServer      = "127.0.0.1:2003"
	defaultReplacement = "_"
)

// Config is the validated configuration of the carbon backend.
type Config struct {
	Host        string
	Port        int
	Replacement string
	BasePath    string
}

// ParseConfig builds a Config from the backend options.
func ParseConfig(opts backend.Options) (Config, error) {
	server := opts.String(OptServer, defaultServer)
	host, portStr, err := net.SplitHostPort(server)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", backend.ErrInvalidOption, OptServer, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("%w: %s: invalid port %q", backend.ErrInvalidOption, OptServer, portStr)
	}
	if host == "" {
		return Config{}, fmt.Errorf("%w: %s: missing host", backend.ErrInvalidOption, OptServer)
	}

	replacement := defaultReplacement
	if v, ok := opts[OptReplacement].(string); ok {
		replacement = v
	}
	if strings.ContainsAny(replacement, ". \n") {
		return Config{}, fmt.Errorf("%w: %s: %q would break metric paths", backend.ErrInvalidOption, OptReplacement, replacement)
	}

	return Config{
		Host:        host,
		Port:        port,
		Replacement: replacement,
		BasePath:    strings.Trim(opts.String(OptBasePath, ""), "."),
	}, nil
}

// Backend sends metrics to carbon over the Graphite plaintext protocol.
type Backend struct {
	cfg    Config
	conn   *graphite.Graphite
	logger *logging.Logger
}

// New parses the options. The connection is opened on the first Send.
func New(opts backend.Options, logger *logging.Logger) (*Backend, error) {
	cfg, err := ParseConfig(opts)
	if err != nil {
		return nil, err
	}

	logger = logger.With("backend", Name)
	logger.Info("carbon backend initialised", "server", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))

	return &Backend{cfg: cfg, logger: logger}, nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Close drops the carbon connection.
func (b *Backend) Close() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.Disconnect()
	b.conn = nil
	return err
}

// Send writes one Graphite line per metric.
//
// A failed write reconnects and retries once. When that fails too the
// error is logged and Send reports 0 records.
func (b *Backend) Send(ctx context.Context, records []*perfdata.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	metrics := b.metrics(records)
	if len(metrics) == 0 {
		return len(records), nil
	}

	err := b.send(metrics)
	if err != nil {
		b.logger.Warn("carbon send failed, reconnecting", "error", err)
		_ = b.Close()
		err = b.send(metrics)
	}
	if err != nil {
		b.logger.Critical("error sending metrics to carbon", "metrics", len(metrics), "error", err)
		_ = b.Close()
		return 0, nil
	}

	b.logger.Debug("metrics sent", "metrics", len(metrics))
	return len(records), nil
}

func (b *Backend) send(metrics []graphite.Metric) error {
	if b.conn == nil {
		conn, err := graphite.NewGraphite(b.cfg.Host, b.cfg.Port)
		if err != nil {
			return err
		}
		b.conn = conn
	}
	return b.conn.SendMetrics(metrics)
}

func (b *Backend) metrics(records []*perfdata.Record) []graphite.Metric {
	var out []graphite.Metric
	for _, rec := range records {
		for _, m := range rec.Metrics {
			out = append(out, graphite.Metric{
				Name:      b.path(rec, m.Label),
				Value:     strconv.FormatFloat(m.Float(), 'f', -1, 64),
				Timestamp: rec.Timet,
			})
		}
	}
	return out
}

// path builds base.prefix.host[.service][.postfix].label, skipping empty
// components. Dots and spaces inside host, service and label are replaced.
func (b *Backend) path(rec *perfdata.Record, label string) string {
	parts := make([]string, 0, 6)
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(b.cfg.BasePath)
	add(strings.Trim(rec.GraphitePrefix, "."))
	add(b.clean(rec.HostName))
	if !rec.IsHostCheck() {
		add(b.clean(rec.ServiceDesc))
	}
	add(strings.Trim(rec.GraphitePostfix, "."))
	add(b.clean(label))

	return strings.Join(parts, ".")
}

func (b *Backend) clean(s string) string {
	return strings.NewReplacer(".", b.cfg.Replacement, " ", b.cfg.Replacement).Replace(s)
}
