// Package perfdata defines the check-result records that graphios backends
// consume.
//
// A Record is one host or service check result with its parsed performance
// data. Records are produced by the collector (spool parsing is out of
// scope here) and handed to backends as JSON, one object per record or a
// single array:
//
//	{"TIMET": 1700000000, "HOSTNAME": "web1", "SERVICEDESC": "check_disk",
//	 "SERVICESTATE": 0, "PROJECT": "infra",
//	 "METRICS": [{"label": "used", "value": "42.5", "uom": "%",
//	              "warn": "", "crit": "90", "min": "", "max": ""}]}
//
// Empty strings stand for absent thresholds and units. Metric values may be
// strings or numbers; Metric.Float never fails and returns 0 for values that
// are not numeric.
package perfdata
