package backend

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options is the flat option mapping shared by all backends, as found under
// "options" in graphios.yaml. Values are strings, bools or ints.
type Options map[string]any

// Has reports whether key is set to a non-empty value.
func (o Options) Has(key string) bool {
	v, ok := o[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the option as a string, or def when unset.
func (o Options) String(key, def string) string {
	if !o.Has(key) {
		return def
	}
	switch v := o[key].(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// Required returns the option as a string or ErrMissingOption.
func (o Options) Required(key string) (string, error) {
	if !o.Has(key) {
		return "", fmt.Errorf("%w: %s", ErrMissingOption, key)
	}
	return o.String(key, ""), nil
}

// Bool returns the option as a bool, or def when unset.
// Strings are accepted in the usual true/false, yes/no, on/off, 1/0 forms.
func (o Options) Bool(key string, def bool) (bool, error) {
	if !o.Has(key) {
		return def, nil
	}
	switch v := o[key].(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %s: %v is not a boolean", ErrInvalidOption, key, o[key])
}

// Int returns the option as an int, or def when unset.
func (o Options) Int(key string, def int) (int, error) {
	if !o.Has(key) {
		return def, nil
	}
	switch v := o[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s: %v is not an integer", ErrInvalidOption, key, o[key])
}

// PositiveInt is Int that also rejects zero and negative values.
func (o Options) PositiveInt(key string, def int) (int, error) {
	n, err := o.Int(key, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s: must be positive, got %d", ErrInvalidOption, key, n)
	}
	return n, nil
}

// StringMap returns the option as a string mapping.
//
// The value may already be a mapping (from YAML) or a mapping literal
// string such as "{'env': 'prod', 'dc': 'mad'}". Scalar values are
// converted to strings. Unset yields an empty, non-nil map.
func (o Options) StringMap(key string) (map[string]string, error) {
	out := map[string]string{}
	if !o.Has(key) {
		return out, nil
	}

	var raw map[string]any
	switch v := o[key].(type) {
	case map[string]any:
		raw = v
	case map[string]string:
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	case string:
		if err := yaml.Unmarshal([]byte(v), &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOption, key, err)
		}
		if raw == nil {
			return nil, fmt.Errorf("%w: %s: %q is not a mapping", ErrInvalidOption, key, v)
		}
	default:
		return nil, fmt.Errorf("%w: %s: %v is not a mapping", ErrInvalidOption, key, v)
	}

	for k, val := range raw {
		switch val.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("%w: %s: value of %q must be a scalar", ErrInvalidOption, key, k)
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}
