package perfdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Value is the raw textual form of a metric value.
// In JSON it may be written either as a string or as a number.
type Value string

// UnmarshalJSON accepts "42.5", 42.5 and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("metric value: %w", err)
	}
	*v = Value(n.String())
	return nil
}

// flexInt decodes an integer that may arrive quoted, as Nagios macros do.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		fl, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("not an integer: %q", data)
		}
		n = int64(fl)
	}
	*f = flexInt(n)
	return nil
}

// UnmarshalJSON decodes a record, accepting quoted or bare numbers for the
// timestamp and state fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Timet        flexInt `json:"TIMET"`
		HostState    flexInt `json:"HOSTSTATE"`
		ServiceState flexInt `json:"SERVICESTATE"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Timet = int64(aux.Timet)
	r.HostState = int(aux.HostState)
	r.ServiceState = int(aux.ServiceState)
	return nil
}

// Decode reads a stream of JSON record objects until EOF.
// The stream may be a sequence of objects or a single JSON array.
func Decode(r io.Reader) ([]*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var records []*Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		for i, rec := range records {
			if rec == nil {
				return nil, fmt.Errorf("%w: record %d: null", ErrInvalidRecord, i)
			}
			if err := rec.Validate(); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		}
		return records, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var records []*Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidRecord, len(records), err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, &rec)
	}
}
