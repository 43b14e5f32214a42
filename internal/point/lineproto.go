package point

import (
	"bytes"
	"fmt"
	"time"

	protocol "github.com/influxdata/line-protocol"
)

// Encode renders points as InfluxDB line protocol with second precision,
// one newline-terminated line per point.
func Encode(points []*Point) ([]byte, error) {
	var buf bytes.Buffer
	enc := protocol.NewEncoder(&buf)
	enc.SetPrecision(time.Second)
	enc.SetFieldSortOrder(protocol.SortFields)
	enc.FailOnFieldErr(true)

	for _, p := range points {
		if _, err := enc.Encode(p.ToWrite()); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", p.Measurement, err)
		}
	}
	return buf.Bytes(), nil
}

// Line renders a single point without the trailing newline.
func (p *Point) Line() (string, error) {
	b, err := Encode([]*Point{p})
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(b, []byte("\n"))), nil
}
