package backend

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/rcrowley/go-metrics"

	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	"github.com/adrianlzt/graphios/internal/perfdata"
)

// Counter names, prefixed with the backend name in the registry.
const (
	CounterSends        = "sends"
	CounterSent         = "records.sent"
	CounterInsufficient = "records.insufficient"
)

// Set fans records out to several backends and keeps per-backend counters.
type Set struct {
	backends []Backend
	logger   *logging.Logger
	registry metrics.Registry
}

// NewSet creates a Set over the given backends, in order.
func NewSet(logger *logging.Logger, backends ...Backend) *Set {
	return &Set{
		backends: backends,
		logger:   logger,
		registry: metrics.NewRegistry(),
	}
}

// Send hands records to every backend.
//
// It returns true only if every backend accounted for every record. A
// backend error is logged and does not stop the remaining backends, except
// for context cancellation which is returned at once.
func (s *Set) Send(ctx context.Context, records []*perfdata.Record) (bool, error) {
	ok := true
	for _, b := range s.backends {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		name := b.Name()
		sent, err := b.Send(ctx, records)
		s.counter(name, CounterSends).Inc(1)
		s.counter(name, CounterSent).Inc(int64(sent))

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			s.logger.Error("backend send failed", "backend", name, "error", err)
			ok = false
		}

		if sent < len(records) {
			s.counter(name, CounterInsufficient).Inc(int64(len(records) - sent))
			s.logger.Warn("insufficient metrics sent",
				"backend", name,
				"sent", sent,
				"expected", len(records),
			)
			ok = false
		}
	}
	return ok, nil
}

// Counts returns a snapshot of all counters keyed by "<backend>.<counter>".
func (s *Set) Counts() map[string]int64 {
	out := make(map[string]int64)
	s.registry.Each(func(name string, m interface{}) {
		if c, isCounter := m.(metrics.Counter); isCounter {
			out[name] = c.Count()
		}
	})
	return out
}

// LogCounts writes the counters to the logger, sorted by name.
func (s *Set) LogCounts() {
	counts := s.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]any, 0, len(names)*2)
	for _, name := range names {
		args = append(args, name, counts[name])
	}
	s.logger.Info("backend counters", args...)
}

// Names returns the backend names in order.
func (s *Set) Names() []string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return names
}

// Close closes every backend that holds resources.
func (s *Set) Close() error {
	var errs []error
	for _, b := range s.backends {
		if c, isCloser := b.(io.Closer); isCloser {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Set) counter(backendName, counter string) metrics.Counter {
	return metrics.GetOrRegisterCounter(backendName+"."+counter, s.registry)
}
