// Package logging is the log/slog setup shared by the graphios command and
// its backends.
//
// Output is JSON by default or logfmt-style text, filtered by level, and
// every entry carries the service name and build version. On top of the
// slog levels there is CRITICAL, used when points are lost or the
// configuration cannot be used.
//
//	logging:
//	  level: "info"      # debug, info, warn, error, critical
//	  format: "json"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// Logs go to stderr unless told otherwise so they never interleave with the
// stdout backend.
//
//	logger := logging.New(cfg.Logging, version)
//	log := logger.With("backend", "influxdb")
//	log.Critical("error writing points", "error", err)
//
// Never log passwords. Backends log server addresses and database names only.
package logging
