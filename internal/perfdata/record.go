package perfdata

import (
	"math"
	"strconv"
	"strings"
)

// DefaultProject is the project used for records that carry no project label.
const DefaultProject = "NA"

// Record is one check result as handed over by the collector.
// Backends treat it as read-only.
type Record struct {
	DataType string `json:"DATATYPE"`
	Timet    int64  `json:"TIMET"`

	// Identity
	HostName    string `json:"HOSTNAME"`
	ServiceDesc string `json:"SERVICEDESC,omitempty"`

	// Raw check output
	PerfData            string `json:"PERFDATA,omitempty"`
	ServiceCheckCommand string `json:"SERVICECHECKCOMMAND,omitempty"`
	HostCheckCommand    string `json:"HOSTCHECKCOMMAND,omitempty"`

	// State
	HostState        int    `json:"HOSTSTATE"`
	HostStateType    string `json:"HOSTSTATETYPE,omitempty"`
	ServiceState     int    `json:"SERVICESTATE"`
	ServiceStateType string `json:"SERVICESTATETYPE,omitempty"`

	// Graphite naming hints
	MetricBasePath  string `json:"METRICBASEPATH,omitempty"`
	GraphitePrefix  string `json:"GRAPHITEPREFIX,omitempty"`
	GraphitePostfix string `json:"GRAPHITEPOSTFIX,omitempty"`

	Project string   `json:"PROJECT,omitempty"`
	Metrics []Metric `json:"METRICS"`
}

// ProjectName returns the project label, or DefaultProject when the record has none.
func (r *Record) ProjectName() string {
	if r.Project == "" {
		return DefaultProject
	}
	return r.Project
}

// IsHostCheck reports whether the record is a host check (no service description).
func (r *Record) IsHostCheck() bool {
	return r.ServiceDesc == ""
}

// Metric is a single perfdata entry of a record.
// Empty strings mean "absent" for every field except Label.
type Metric struct {
	Label string `json:"label"`
	Value Value  `json:"value"`
	UOM   string `json:"uom"`
	Warn  string `json:"warn"`
	Crit  string `json:"crit"`
	Min   string `json:"min"`
	Max   string `json:"max"`
}

// Float returns the metric value as float64.
// Values that do not parse as a finite number, "NaN" and "inf" included,
// yield 0 so a metric is never dropped.
func (m Metric) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(m.Value)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
