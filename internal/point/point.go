package point

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/adrianlzt/graphios/internal/perfdata"
)

// Tag and field name suffixes derived from a metric label.
const (
	SuffixUOM      = "_uom"
	SuffixWarning  = "_warning"
	SuffixCritical = "_critical"
	SuffixMin      = "_min"
	SuffixMax      = "_max"
)

// Point is a single time-series point built from one record.
//
// Metric values are always float64. Threshold fields keep the raw string
// from the check output.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]any
	Time        time.Time
}

// FromRecord converts a record into a point.
//
// Service checks use the service description as measurement and the service
// state as status; host checks use the host check command and host state.
// extraTags are applied last and win over the built-in tags.
func FromRecord(rec *perfdata.Record, extraTags map[string]string) *Point {
	measurement, status := rec.ServiceDesc, rec.ServiceState
	if rec.IsHostCheck() {
		measurement, status = rec.HostCheckCommand, rec.HostState
	}

	tags := map[string]string{
		"host":    rec.HostName,
		"project": rec.ProjectName(),
		"status":  strconv.Itoa(status),
	}
	fields := make(map[string]any, len(rec.Metrics))

	for _, m := range rec.Metrics {
		label := FieldName(m.Label)
		fields[label] = m.Float()

		if m.UOM != "" {
			tags[label+SuffixUOM] = m.UOM
		}
		if m.Warn != "" {
			fields[label+SuffixWarning] = m.Warn
		}
		if m.Crit != "" {
			fields[label+SuffixCritical] = m.Crit
		}
		if m.Min != "" {
			fields[label+SuffixMin] = m.Min
		}
		if m.Max != "" {
			fields[label+SuffixMax] = m.Max
		}
	}

	for k, v := range extraTags {
		tags[k] = v
	}

	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
		Time:        time.Unix(rec.Timet, 0).UTC(),
	}
}

// FieldName maps a metric label to its field key.
// "time" is reserved for the point timestamp and becomes "time_value".
func FieldName(label string) string {
	if label == "time" {
		return "time_value"
	}
	return label
}

// ToWrite converts the point for the InfluxDB client.
func (p *Point) ToWrite() *write.Point {
	return write.NewPoint(p.Measurement, p.Tags, p.Fields, p.Time)
}

