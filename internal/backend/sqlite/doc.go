// Package sqlite implements a backend that archives points in a local
// SQLite database.
//
// Each record becomes one row of the points table holding the project,
// measurement, host, timestamp, tags and fields (as JSON objects) and the
// InfluxDB line-protocol form of the point, ready to be replayed.
//
// The schema lives in the migrations package and is applied when the
// backend is created.
//
// # Options
//
//	sqlite_path          default ./data/graphios.db
//	sqlite_busy_timeout  seconds, default 5
//	sqlite_extra_tags    tags added to every point
package sqlite
