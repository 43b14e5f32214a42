package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultKeepAlive         = 60 * time.Second
	defaultReconnectInterval = 30 * time.Second

	// defaultDisconnectQuiesce is in milliseconds, as paho expects.
	defaultDisconnectQuiesce = 1000

	maxQoS = 2
)

// Config describes the broker connection.
type Config struct {
	Host     string
	Port     int
	TLS      bool
	ClientID string
	Username string
	Password string

	// QoS is used for the status messages.
	QoS byte

	// StatusTopic receives retained online/offline messages and the last
	// will. Empty disables status reporting.
	StatusTopic string

	// ConnectTimeout bounds the initial connection. Zero means 10s.
	ConnectTimeout time.Duration
}

// BrokerURL returns the paho broker URL (tcp:// or ssl://).
func (c Config) BrokerURL() string {
	scheme := "tcp"
	if c.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// buildClientOptions translates Config into paho options.
func buildClientOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(cfg.BrokerURL())
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// Nothing to resume: graphios never subscribes.
	opts.SetCleanSession(true)

	// Reconnect after a lost connection, but fail the first connect fast
	// so startup reports a bad broker address.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(defaultReconnectInterval)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	opts.SetConnectTimeout(timeout)

	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	if cfg.StatusTopic != "" {
		configureLWT(opts, cfg)
	}

	return opts
}

// configureLWT registers a retained offline status that the broker
// publishes if the connection drops without a DISCONNECT.
func configureLWT(opts *pahomqtt.ClientOptions, cfg Config) {
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		cfg.ClientID,
		time.Now().UTC().Format(time.RFC3339),
	)
	opts.SetWill(cfg.StatusTopic, willPayload, cfg.QoS, true)
}

// buildOnlinePayload and buildOfflinePayload render the retained status messages.
func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
