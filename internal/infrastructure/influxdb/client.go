package influxdb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	http2 "github.com/influxdata/influxdb-client-go/v2/api/http"
)

// Default timeouts for InfluxDB operations.
const (
	DefaultTimeout     = 5 * time.Second
	defaultPingTimeout = 5 * time.Second

	applicationName = "graphios"
)

// Server is one cluster member.
type Server struct {
	Host string
	Port int
}

// String returns host:port.
func (s Server) String() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the base URL of the member.
func (s Server) URL(useSSL bool) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + s.String()
}

// Config describes how to reach the cluster.
type Config struct {
	Servers  []Server
	UseSSL   bool
	Username string
	Password string

	// Timeout bounds every HTTP request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client talks to a cluster of InfluxDB servers.
//
// Requests go to the members in round-robin order. Transport failures and
// 5xx responses move on to the next member; a 4xx response is returned at
// once as a *ClientError.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	members []member
	useSSL  bool

	mu   sync.Mutex
	next int
}

type member struct {
	server Server
	client influxdb2.Client
}

// Connect builds a client for every cluster member.
//
// No request is made; the first write or HealthCheck reveals unreachable
// members.
//
// Parameters:
//   - cfg: Cluster configuration parsed from the backend options
//
// Returns:
//   - *Client: Client ready for use
//   - error: ErrNoServers if cfg lists no members
func Connect(cfg Config) (*Client, error) {
	if len(cfg.Servers) == 0 {
		return nil, ErrNoServers
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &basicAuthTransport{
			username: cfg.Username,
			password: cfg.Password,
			base:     http.DefaultTransport.(*http.Transport).Clone(),
		},
	}

	c := &Client{
		members: make([]member, 0, len(cfg.Servers)),
		useSSL:  cfg.UseSSL,
	}
	for _, s := range cfg.Servers {
		// Credentials travel as basic auth, so no token is set.
		client := influxdb2.NewClientWithOptions(
			s.URL(cfg.UseSSL),
			"",
			influxdb2.DefaultOptions().
				SetPrecision(time.Second).
				SetHTTPClient(httpClient).
				SetApplicationName(applicationName),
		)
		c.members = append(c.members, member{server: s, client: client})
	}

	return c, nil
}

// Servers returns the member addresses as host:port.
func (c *Client) Servers() []string {
	out := make([]string, len(c.members))
	for i, m := range c.members {
		out[i] = m.server.String()
	}
	return out
}

// Close releases every member client.
func (c *Client) Close() error {
	for _, m := range c.members {
		m.client.Close()
	}
	return nil
}

// HealthCheck pings the members in configuration order and succeeds as soon
// as one answers. It does not move the round-robin position.
func (c *Client) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	return c.walk(checkCtx, 0, func(ctx context.Context, m member) error {
		healthy, err := m.client.Ping(ctx)
		if err != nil {
			return err
		}
		if !healthy {
			return fmt.Errorf("%w: %s not healthy", ErrConnectionFailed, m.server)
		}
		return nil
	})
}

// do runs op against the members, starting at the next round-robin
// position, until one succeeds or returns a client error.
func (c *Client) do(ctx context.Context, op func(ctx context.Context, m member) error) error {
	c.mu.Lock()
	start := c.next
	c.next = (c.next + 1) % len(c.members)
	c.mu.Unlock()

	return c.walk(ctx, start, op)
}

// walk tries op on every member once, beginning at index start.
func (c *Client) walk(ctx context.Context, start int, op func(ctx context.Context, m member) error) error {
	var lastErr error
	for i := range c.members {
		if err := ctx.Err(); err != nil {
			return err
		}

		m := c.members[(start+i)%len(c.members)]
		err := classify(ctx, m.server, op(ctx, m))
		if err == nil {
			return nil
		}

		// Only the caller's context ends the walk early. A member timing
		// out also matches context.DeadlineExceeded and must fail over.
		var clientErr *ClientError
		if errors.As(err, &clientErr) || ctx.Err() != nil {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// classify maps a library or transport error onto the package errors.
func classify(ctx context.Context, server Server, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	// Raised by a response callback and wrapped by the library.
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}

	var herr *http2.Error
	if errors.As(err, &herr) && herr.StatusCode != 0 {
		switch {
		case herr.StatusCode >= 400 && herr.StatusCode < 500:
			return &ClientError{
				Server:     server.String(),
				StatusCode: herr.StatusCode,
				Code:       herr.Code,
				Message:    herr.Message,
			}
		default:
			return fmt.Errorf("%w: %s: %w", ErrWriteFailed, server, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %s: %w", ErrTimeout, server, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, server, err)
	}

	if errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrWriteFailed) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrWriteFailed, server, err)
}

// basicAuthTransport adds HTTP basic-auth credentials to every request.
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.username == "" && t.password == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(r)
}
