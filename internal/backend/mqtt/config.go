package mqtt

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/adrianlzt/graphios/internal/backend"
	broker "github.com/adrianlzt/graphios/internal/infrastructure/mqtt"
)

// Option keys read by this backend.
const (
	OptBroker      = "mqtt_broker"
	OptUseSSL      = "mqtt_use_ssl"
	OptUser        = "mqtt_user"
	OptPassword    = "mqtt_password"
	OptClientID    = "mqtt_client_id"
	OptTopicPrefix = "mqtt_topic_prefix"
	OptQoS         = "mqtt_qos"
	OptExtraTags   = "mqtt_extra_tags"
)

const (
	defaultHost     = "127.0.0.1"
	defaultPort     = 1883
	defaultSSLPort  = 8883
	defaultClientID = "graphios"
	defaultQoS      = 1
)

// Config is the validated configuration of the mqtt backend.
type Config struct {
	Broker    broker.Config
	Topics    broker.Topics
	ExtraTags map[string]string
}

// ParseConfig builds a Config from the backend options.
func ParseConfig(opts backend.Options) (Config, error) {
	useSSL, err := opts.Bool(OptUseSSL, false)
	if err != nil {
		return Config{}, err
	}
	port := defaultPort
	if useSSL {
		port = defaultSSLPort
	}

	host, port, err := parseBroker(opts.String(OptBroker, defaultHost), port)
	if err != nil {
		return Config{}, err
	}

	qos, err := opts.Int(OptQoS, defaultQoS)
	if err != nil {
		return Config{}, err
	}
	if qos < 0 || qos > 2 {
		return Config{}, fmt.Errorf("%w: %s: %d is not 0, 1 or 2", backend.ErrInvalidOption, OptQoS, qos)
	}

	extraTags, err := opts.StringMap(OptExtraTags)
	if err != nil {
		return Config{}, err
	}

	topics := broker.Topics{Prefix: opts.String(OptTopicPrefix, broker.DefaultTopicPrefix)}
	clientID := opts.String(OptClientID, defaultClientID)

	return Config{
		Broker: broker.Config{
			Host:        host,
			Port:        port,
			TLS:         useSSL,
			ClientID:    clientID,
			Username:    opts.String(OptUser, ""),
			Password:    opts.String(OptPassword, ""),
			QoS:         byte(qos),
			StatusTopic: topics.Status(),
		},
		Topics:    topics,
		ExtraTags: extraTags,
	}, nil
}

// parseBroker splits "host[:port]", falling back to defaultPort.
func parseBroker(raw string, defaultPort int) (string, int, error) {
	host, portStr, err := net.SplitHostPort(raw)
	if err != nil {
		// No port given.
		return strings.Trim(raw, "[]"), defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("%w: %s: invalid port %q", backend.ErrInvalidOption, OptBroker, portStr)
	}
	if host == "" {
		return "", 0, fmt.Errorf("%w: %s: missing host", backend.ErrInvalidOption, OptBroker)
	}
	return host, port, nil
}
