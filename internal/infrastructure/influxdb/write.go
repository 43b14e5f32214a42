package influxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoints writes points to database in chunks of at most batchSize
// points. A batchSize of zero or less writes everything in one request.
//
// Every chunk is a separate request and may land on a different member.
// The first failing chunk stops the write; earlier chunks stay written.
//
// Parameters:
//   - ctx: Context for cancellation
//   - database: Target database (bucket on the v2 write endpoint)
//   - points: Points to write, second precision
//   - batchSize: Maximum points per request
//
// Returns:
//   - error: *ClientError, ErrTimeout, ErrConnectionFailed or ErrWriteFailed
func (c *Client) WritePoints(ctx context.Context, database string, points []*write.Point, batchSize int) error {
	if len(points) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > len(points) {
		batchSize = len(points)
	}

	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		chunk := points[start:end]

		err := c.do(ctx, func(ctx context.Context, m member) error {
			return m.client.WriteAPIBlocking("", database).WritePoint(ctx, chunk...)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateDatabase issues CREATE DATABASE for name.
//
// InfluxDB treats creating an existing database as a no-op, so the call is
// safe to repeat. A statement error reported inside a 200 response, such as
// missing admin rights, is returned as a *ClientError.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	form := url.Values{}
	form.Set("q", fmt.Sprintf("CREATE DATABASE %s", quoteIdent(name)))
	body := form.Encode()

	return c.do(ctx, func(ctx context.Context, m member) error {
		service := m.client.HTTPService()
		queryURL := strings.TrimSuffix(service.ServerURL(), "/") + "/query"

		perr := service.DoPostRequest(ctx, queryURL, strings.NewReader(body),
			func(req *http.Request) {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			},
			func(resp *http.Response) error {
				defer resp.Body.Close()
				return statementError(m.server, resp)
			},
		)
		if perr != nil {
			return perr
		}
		return nil
	})
}

// queryResponse is the body /query answers with.
type queryResponse struct {
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
	Error string `json:"error"`
}

// statementError reads a /query response and returns the first statement
// error it reports. An empty or non-JSON body counts as success.
func statementError(server Server, resp *http.Response) error {
	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	msg := body.Error
	for _, r := range body.Results {
		if msg == "" {
			msg = r.Error
		}
	}
	if msg == "" {
		return nil
	}
	return &ClientError{Server: server.String(), StatusCode: resp.StatusCode, Message: msg}
}

// quoteIdent quotes an InfluxQL identifier.
func quoteIdent(name string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(name) + `"`
}
