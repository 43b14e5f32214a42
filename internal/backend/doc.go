// Package backend defines the contract shared by graphios backends.
//
// Every backend is built from the flat Options mapping of graphios.yaml and
// exposes Send, which returns the number of records it accounted for. The
// subpackages implement the destinations:
//
//   - influxdb: per-project databases on an InfluxDB cluster
//   - stdout: human-readable dump for debugging
//   - carbon: Graphite plaintext protocol
//   - mqtt: line-protocol payloads published to a broker
//   - sqlite: local archive of every point
//
// A Set drives several backends at once and counts sends, delivered records
// and shortfalls per backend in a go-metrics registry. A shortfall is logged
// as "insufficient metrics sent".
//
// Option parsing is strict. A missing required option yields
// ErrMissingOption, a malformed value ErrInvalidOption, both wrapped with the
// option key.
package backend
