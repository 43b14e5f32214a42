package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianlzt/graphios/internal/backend"
)

func TestOptions_String(t *testing.T) {
	opts := backend.Options{
		"name":  " graphios ",
		"port":  8086,
		"empty": "",
	}

	assert.Equal(t, "graphios", opts.String("name", "x"))
	assert.Equal(t, "8086", opts.String("port", "x"))
	assert.Equal(t, "x", opts.String("empty", "x"))
	assert.Equal(t, "x", opts.String("missing", "x"))
}

func TestOptions_Required(t *testing.T) {
	opts := backend.Options{"user": "graphios", "blank": "  "}

	v, err := opts.Required("user")
	require.NoError(t, err)
	assert.Equal(t, "graphios", v)

	_, err = opts.Required("blank")
	assert.ErrorIs(t, err, backend.ErrMissingOption)

	_, err = opts.Required("password")
	assert.ErrorIs(t, err, backend.ErrMissingOption)
	assert.Contains(t, err.Error(), "password")
}

func TestOptions_Bool(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    bool
		wantErr bool
	}{
		{name: "native true", value: true, want: true},
		{name: "native false", value: false, want: false},
		{name: "string True", value: "True", want: true},
		{name: "string yes", value: "yes", want: true},
		{name: "string off", value: "off", want: false},
		{name: "string 0", value: "0", want: false},
		{name: "int 1", value: 1, want: true},
		{name: "garbage", value: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := backend.Options{"k": tt.value}.Bool("k", false)
			if tt.wantErr {
				assert.ErrorIs(t, err, backend.ErrInvalidOption)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := backend.Options{}.Bool("k", true)
	require.NoError(t, err)
	assert.True(t, got, "unset option must return the default")
}

func TestOptions_Int(t *testing.T) {
	opts := backend.Options{"a": 100, "b": " 250 ", "c": "lots", "d": true}

	n, err := opts.Int("a", 1)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = opts.Int("b", 1)
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	n, err = opts.Int("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = opts.Int("c", 1)
	assert.ErrorIs(t, err, backend.ErrInvalidOption)

	_, err = opts.Int("d", 1)
	assert.ErrorIs(t, err, backend.ErrInvalidOption)
}

func TestOptions_PositiveInt(t *testing.T) {
	_, err := backend.Options{"k": 0}.PositiveInt("k", 250)
	assert.ErrorIs(t, err, backend.ErrInvalidOption)

	_, err = backend.Options{"k": "-5"}.PositiveInt("k", 250)
	assert.ErrorIs(t, err, backend.ErrInvalidOption)

	n, err := backend.Options{}.PositiveInt("k", 250)
	require.NoError(t, err)
	assert.Equal(t, 250, n)
}

func TestOptions_StringMap(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "python dict literal",
			value: "{'env': 'prod', 'dc': 'mad'}",
			want:  map[string]string{"env": "prod", "dc": "mad"},
		},
		{
			name:  "json object literal",
			value: `{"env": "prod"}`,
			want:  map[string]string{"env": "prod"},
		},
		{
			name:  "numeric values become strings",
			value: "{'rack': 12, 'active': true}",
			want:  map[string]string{"rack": "12", "active": "true"},
		},
		{
			name:  "yaml mapping",
			value: map[string]any{"env": "prod", "tier": 2},
			want:  map[string]string{"env": "prod", "tier": "2"},
		},
		{
			name:  "empty literal",
			value: "{}",
			want:  map[string]string{},
		},
		{
			name:    "not a mapping",
			value:   "env=prod",
			wantErr: true,
		},
		{
			name:    "unterminated literal",
			value:   "{'env': 'prod'",
			wantErr: true,
		},
		{
			name:    "nested value",
			value:   "{'env': {'a': 1}}",
			wantErr: true,
		},
		{
			name:    "wrong type",
			value:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := backend.Options{"tags": tt.value}.StringMap("tags")
			if tt.wantErr {
				assert.ErrorIs(t, err, backend.ErrInvalidOption)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions_StringMapUnset(t *testing.T) {
	got, err := backend.Options{}.StringMap("tags")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
