package backend

import (
	"context"

	"github.com/adrianlzt/graphios/internal/perfdata"
)

// Backend delivers check-result records to one destination.
//
// Send returns how many records were accounted for. A count lower than
// len(records) tells the caller that some or all of them were not delivered;
// delivery failures are logged by the backend and not returned as errors.
// The error is reserved for failures the caller must act on, such as a
// cancelled context or a broken output stream.
//
// Callers must serialise calls to Send.
type Backend interface {
	Name() string
	Send(ctx context.Context, records []*perfdata.Record) (int, error)
}
