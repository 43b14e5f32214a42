// Package influxdb implements the InfluxDB backend.
//
// Records are converted to points (see package point), grouped by project
// and written to a database named after the project, in bulk writes of at
// most influxdb_max_metrics points with second precision.
//
// # Options
//
//	influxdb_use_ssl      https on port 8087 instead of http on 8086
//	influxdb_servers      comma-separated host:port cluster members
//	influxdb_user         required
//	influxdb_password     required
//	influxdb_db           default database, "nagios"
//	influxdb_max_metrics  points per write, 250
//	influxdb_extra_tags   mapping literal merged into every point
//
// # Failure Policy
//
// A write rejected with "database not found" creates the database and drops
// that batch. Every other failure (client error, timeout, connection
// failure) is logged at CRITICAL and Send returns 0 for the whole call, so
// the caller reports "insufficient metrics sent".
package influxdb
