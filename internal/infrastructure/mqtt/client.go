package mqtt

import (
	"context"
	"fmt"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
)

// Client is a publish-only broker connection.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	paho      pahomqtt.Client
	cfg       Config
	logger    *logging.Logger
	connected atomic.Bool
}

// Connect dials the broker and waits for the CONNACK.
//
// Once connected, paho reconnects by itself after a lost connection; the
// logger records both events. When cfg.StatusTopic is set an online message
// is published (retained) on every (re)connect.
func Connect(cfg Config, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Client{cfg: cfg, logger: logger}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.onConnectionLost(err) })

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		return nil, fmt.Errorf("%w: %s: no answer after %v", ErrConnectionFailed, cfg.BrokerURL(), opts.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.BrokerURL(), err)
	}

	// The connect handler runs on its own goroutine and may lag behind.
	c.connected.Store(true)
	return c, nil
}

func (c *Client) onConnect() {
	c.connected.Store(true)
	c.logger.Debug("connected to MQTT broker", "broker", c.cfg.BrokerURL())
	c.publishStatus(buildOnlinePayload(c.cfg.ClientID))
}

func (c *Client) onConnectionLost(err error) {
	c.connected.Store(false)
	c.logger.Warn("MQTT connection lost", "broker", c.cfg.BrokerURL(), "error", err)
}

func (c *Client) publishStatus(payload string) {
	if c.cfg.StatusTopic == "" {
		return
	}
	c.paho.Publish(c.cfg.StatusTopic, c.cfg.QoS, true, payload).WaitTimeout(defaultPublishTimeout)
}

// Close publishes a graceful offline status and disconnects. It is safe on
// a nil or never-connected Client.
func (c *Client) Close() error {
	if c == nil || c.paho == nil {
		return nil
	}
	if c.IsConnected() {
		c.publishStatus(buildOfflinePayload(c.cfg.ClientID))
	}
	c.paho.Disconnect(defaultDisconnectQuiesce)
	c.connected.Store(false)
	return nil
}

// IsConnected reports whether the broker connection is currently up.
func (c *Client) IsConnected() bool {
	return c.paho != nil && c.connected.Load() && c.paho.IsConnected()
}

// HealthCheck returns ErrNotConnected while the connection is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}
