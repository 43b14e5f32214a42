// Package point turns check-result records into time-series points.
//
// The mapping for one record:
//
//	measurement  service description, or host check command for host checks
//	tags         host, project, status, <label>_uom, then extra tags
//	fields       <label> (float64), <label>_warning, <label>_critical,
//	             <label>_min, <label>_max (raw strings, only when set)
//	time         record TIMET, second precision
//
// Extra tags from configuration override built-in tags with the same key.
// Points are grouped by project into Batches; every project maps to its own
// database.
package point
