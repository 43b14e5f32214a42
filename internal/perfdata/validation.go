package perfdata

import "fmt"

// Validate checks the fields every backend relies on.
// Thresholds, units and values are free-form and never rejected.
func (r *Record) Validate() error {
	if r.HostName == "" {
		return ErrMissingHost
	}
	for i, m := range r.Metrics {
		if m.Label == "" {
			return fmt.Errorf("%w: metric %d", ErrMissingLabel, i)
		}
	}
	return nil
}
