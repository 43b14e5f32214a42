package influxdb

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/adrianlzt/graphios/internal/backend"
	cluster "github.com/adrianlzt/graphios/internal/infrastructure/influxdb"
)

// Option keys read by this backend.
const (
	OptUseSSL     = "influxdb_use_ssl"
	OptServers    = "influxdb_servers"
	OptUser       = "influxdb_user"
	OptPassword   = "influxdb_password"
	OptDatabase   = "influxdb_db"
	OptMaxMetrics = "influxdb_max_metrics"
	OptExtraTags  = "influxdb_extra_tags"
)

// Defaults applied when an option is unset.
const (
	DefaultDatabase   = "nagios"
	DefaultMaxMetrics = 250
	DefaultPort       = 8086
	DefaultSSLPort    = 8087
	defaultHost       = "127.0.0.1"
)

// Config is the validated configuration of the InfluxDB backend.
type Config struct {
	UseSSL   bool
	Servers  []cluster.Server
	Username string
	Password string

	// Database is the configured default database. Points are routed by
	// project, so it is kept for reference only.
	Database string

	MaxMetrics int
	ExtraTags  map[string]string

	// Timeout bounds each request to the cluster.
	Timeout time.Duration
}

// ParseConfig builds a Config from the backend options.
//
// Returns ErrMissingOption when the user or password is absent and
// ErrInvalidOption for values that cannot be parsed.
func ParseConfig(opts backend.Options) (Config, error) {
	cfg := Config{Timeout: cluster.DefaultTimeout}

	var err error
	if cfg.UseSSL, err = opts.Bool(OptUseSSL, false); err != nil {
		return Config{}, err
	}

	port := DefaultPort
	if cfg.UseSSL {
		port = DefaultSSLPort
	}
	raw := opts.String(OptServers, net.JoinHostPort(defaultHost, strconv.Itoa(port)))
	if cfg.Servers, err = parseServers(raw, port); err != nil {
		return Config{}, err
	}

	if cfg.Username, err = opts.Required(OptUser); err != nil {
		return Config{}, err
	}
	if cfg.Password, err = opts.Required(OptPassword); err != nil {
		return Config{}, err
	}

	cfg.Database = opts.String(OptDatabase, DefaultDatabase)

	if cfg.MaxMetrics, err = opts.PositiveInt(OptMaxMetrics, DefaultMaxMetrics); err != nil {
		return Config{}, err
	}
	if cfg.ExtraTags, err = opts.StringMap(OptExtraTags); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// parseServers splits a comma-separated host[:port] list.
// Entries without a port get defaultPort.
func parseServers(raw string, defaultPort int) ([]cluster.Server, error) {
	var servers []cluster.Server
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		host, portStr := entry, ""
		if strings.Contains(entry, ":") {
			var err error
			host, portStr, err = net.SplitHostPort(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %q: %w", backend.ErrInvalidOption, OptServers, entry, err)
			}
		}
		if host == "" {
			return nil, fmt.Errorf("%w: %s: %q has no host", backend.ErrInvalidOption, OptServers, entry)
		}

		port := defaultPort
		if portStr != "" {
			p, err := strconv.Atoi(portStr)
			if err != nil || p <= 0 || p > 65535 {
				return nil, fmt.Errorf("%w: %s: invalid port in %q", backend.ErrInvalidOption, OptServers, entry)
			}
			port = p
		}

		servers = append(servers, cluster.Server{Host: host, Port: port})
	}

	if len(servers) == 0 {
		return nil, fmt.Errorf("%w: %s: no servers listed", backend.ErrInvalidOption, OptServers)
	}
	return servers, nil
}
