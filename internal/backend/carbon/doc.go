// Package carbon implements a backend that feeds Graphite's carbon daemon.
//
// Every metric of every record becomes one plaintext line:
//
//	<metric_base_path>.<GRAPHITEPREFIX>.<host>.<service>.<GRAPHITEPOSTFIX>.<label> <value> <timet>
//
// Empty components are skipped and host checks have no service component.
// Dots and spaces inside host, service and label are replaced with
// carbon_replacement_character ("_" by default).
//
// # Options
//
//	carbon_server                 host:port, default 127.0.0.1:2003
//	carbon_replacement_character  default "_"
//	metric_base_path              prefix for every path, default empty
package carbon
