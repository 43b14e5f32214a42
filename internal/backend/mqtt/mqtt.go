package mqtt

import (
	"context"
	"net"
	"strconv"

	"github.com/adrianlzt/graphios/internal/backend"
	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	broker "github.com/adrianlzt/graphios/internal/infrastructure/mqtt"
	"github.com/adrianlzt/graphios/internal/perfdata"
	"github.com/adrianlzt/graphios/internal/point"
)

// Name is the backend name used in graphios.yaml.
const Name = "mqtt"

// publisher is the part of the broker client the backend uses.
type publisher interface {
	Publish(ctx context.Context, topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
	Close() error
}

// Backend publishes one line-protocol message per record.
type Backend struct {
	cfg    Config
	conn   publisher
	dial   func(broker.Config) (publisher, error)
	logger *logging.Logger
}

// New parses the options. The broker connection is opened on the first Send.
func New(opts backend.Options, logger *logging.Logger) (*Backend, error) {
	cfg, err := ParseConfig(opts)
	if err != nil {
		return nil, err
	}

	logger = logger.With("backend", Name)
	logger.Info("mqtt backend initialised",
		"broker", net.JoinHostPort(cfg.Broker.Host, strconv.Itoa(cfg.Broker.Port)),
		"ssl", cfg.Broker.TLS,
		"topic_prefix", cfg.Topics.Prefix,
	)

	b := &Backend{cfg: cfg, logger: logger}
	b.dial = func(cfg broker.Config) (publisher, error) {
		return broker.Connect(cfg, logger)
	}
	return b, nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Close disconnects from the broker.
func (b *Backend) Close() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

// Send publishes every record to <prefix>/<project>/<measurement>.
//
// A connection or publish failure is logged and makes Send report 0
// records. Messages published before the failure are not withdrawn.
func (b *Backend) Send(ctx context.Context, records []*perfdata.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := b.connect(); err != nil {
		b.logger.Critical("error connecting to MQTT broker", "error", err)
		return 0, nil
	}

	batches := point.Group(records, b.cfg.ExtraTags)
	for _, project := range batches.Projects() {
		for _, p := range batches[project] {
			if err := ctx.Err(); err != nil {
				return 0, err
			}

			line, err := p.Line()
			if err != nil {
				b.logger.Critical("error encoding point", "project", project, "measurement", p.Measurement, "error", err)
				return 0, nil
			}

			topic := b.cfg.Topics.Point(project, p.Measurement)
			if err := b.conn.Publish(ctx, topic, []byte(line), b.cfg.Broker.QoS, false); err != nil {
				b.logger.Critical("error publishing to MQTT broker", "topic", topic, "error", err)
				return 0, nil
			}
		}
		b.logger.Debug("points published", "project", project, "points", len(batches[project]))
	}

	return len(records), nil
}

func (b *Backend) connect() error {
	if b.conn != nil && b.conn.IsConnected() {
		return nil
	}
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
	conn, err := b.dial(b.cfg.Broker)
	if err != nil {
		return err
	}
	b.conn = conn
	return nil
}
