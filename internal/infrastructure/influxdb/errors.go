package influxdb

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for InfluxDB operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxdb.ErrTimeout) {
//	    // Handle slow cluster
//	}
var (
	// ErrNoServers indicates the cluster configuration has no members.
	ErrNoServers = errors.New("influxdb: no servers configured")

	// ErrConnectionFailed indicates no cluster member could be reached.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrTimeout indicates a request did not complete within the client timeout.
	ErrTimeout = errors.New("influxdb: timeout")

	// ErrWriteFailed indicates a request failed for an unclassified reason.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrClient matches every *ClientError.
	ErrClient = errors.New("influxdb: client error")
)

// ClientError is a request rejected by the server with a 4xx status.
// It is never retried on another cluster member.
type ClientError struct {
	Server     string
	StatusCode int
	Code       string
	Message    string
}

// Error implements error.
func (e *ClientError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	return fmt.Sprintf("influxdb: %s returned %d: %s", e.Server, e.StatusCode, msg)
}

// Unwrap lets errors.Is(err, ErrClient) match.
func (e *ClientError) Unwrap() error {
	return ErrClient
}

// DatabaseNotFound reports whether the server rejected the request because
// the target database does not exist.
func (e *ClientError) DatabaseNotFound() bool {
	const signature = "database not found"
	return strings.Contains(strings.ToLower(e.Message), signature) ||
		strings.Contains(strings.ToLower(e.Code), signature)
}
