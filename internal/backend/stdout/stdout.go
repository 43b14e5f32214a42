// Package stdout implements a backend that prints every record for manual
// inspection.
package stdout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/adrianlzt/graphios/internal/backend"
	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	"github.com/adrianlzt/graphios/internal/perfdata"
)

// Name is the backend name used in graphios.yaml.
const Name = "stdout"

// Divider separates records in the output.
const Divider = "-------"

// Backend prints records. It takes no options.
type Backend struct {
	out    io.Writer
	logger *logging.Logger
}

// New creates a backend writing to os.Stdout.
func New(_ backend.Options, logger *logging.Logger) *Backend {
	return NewWithWriter(os.Stdout, logger)
}

// NewWithWriter creates a backend writing to w.
func NewWithWriter(w io.Writer, logger *logging.Logger) *Backend {
	return &Backend{out: w, logger: logger.With("backend", Name)}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Send prints every metric and field of every record followed by a divider
// line and returns the number of records printed. Write errors are returned.
func (b *Backend) Send(ctx context.Context, records []*perfdata.Record) (int, error) {
	w := bufio.NewWriter(b.out)
	printed := 0

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return printed, err
		}
		writeRecord(w, rec)
		// Flush per record so the count matches what reached the writer.
		if err := w.Flush(); err != nil {
			return printed, fmt.Errorf("stdout: %w", err)
		}
		printed++
	}

	b.logger.Debug("records printed", "count", printed)
	return printed, nil
}

func writeRecord(w *bufio.Writer, rec *perfdata.Record) {
	for _, m := range rec.Metrics {
		fmt.Fprintf(w, "LABEL:%s\n", m.Label)
		fmt.Fprintf(w, "VALUE:%s\n", m.Value)
		fmt.Fprintf(w, "UOM:%s\n", m.UOM)
	}
	fields := []struct {
		key   string
		value any
	}{
		{"DATATYPE", rec.DataType},
		{"TIMET", rec.Timet},
		{"HOSTNAME", rec.HostName},
		{"SERVICEDESC", rec.ServiceDesc},
		{"PERFDATA", rec.PerfData},
		{"SERVICECHECKCOMMAND", rec.ServiceCheckCommand},
		{"HOSTCHECKCOMMAND", rec.HostCheckCommand},
		{"HOSTSTATE", rec.HostState},
		{"HOSTSTATETYPE", rec.HostStateType},
		{"SERVICESTATE", rec.ServiceState},
		{"SERVICESTATETYPE", rec.ServiceStateType},
		{"METRICBASEPATH", rec.MetricBasePath},
		{"GRAPHITEPREFIX", rec.GraphitePrefix},
		{"GRAPHITEPOSTFIX", rec.GraphitePostfix},
		{"PROJECT", rec.ProjectName()},
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%s:%v\n", f.key, f.value)
	}
	fmt.Fprintln(w, Divider)
}
