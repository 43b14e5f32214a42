package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "graphios.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
logging:
  level: debug
  format: text
backends:
  - influxdb
  - stdout
input:
  path: /var/spool/graphios/records.json
options:
  influxdb_servers: "db1:8086,db2:8086"
  influxdb_user: graphios
  influxdb_password: secret
  influxdb_use_ssl: true
  influxdb_max_metrics: 100
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	// Unset values keep their defaults
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Logging.Output = %q, want %q", cfg.Logging.Output, "stderr")
	}

	if len(cfg.Backends) != 2 || cfg.Backends[0] != BackendInfluxDB {
		t.Errorf("Backends = %v, want [influxdb stdout]", cfg.Backends)
	}

	if cfg.Input.Path != "/var/spool/graphios/records.json" {
		t.Errorf("Input.Path = %q", cfg.Input.Path)
	}

	if cfg.Options["influxdb_servers"] != "db1:8086,db2:8086" {
		t.Errorf("Options[influxdb_servers] = %v", cfg.Options["influxdb_servers"])
	}
	if cfg.Options["influxdb_use_ssl"] != true {
		t.Errorf("Options[influxdb_use_ssl] = %v, want true", cfg.Options["influxdb_use_ssl"])
	}
	if cfg.Options["influxdb_max_metrics"] != 100 {
		t.Errorf("Options[influxdb_max_metrics] = %v, want 100", cfg.Options["influxdb_max_metrics"])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/graphios.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
backends:
  - influxdb
  - rrdtool
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for unknown backend, got nil")
	}
	if !strings.Contains(err.Error(), "rrdtool") {
		t.Errorf("Load() error = %v, want it to name the unknown backend", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Backends: []string{BackendInfluxDB, BackendCarbon},
				Input:    InputConfig{Path: "-"},
			},
			wantErr: false,
		},
		{
			name: "no backends",
			config: &Config{
				Input: InputConfig{Path: "-"},
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			config: &Config{
				Backends: []string{"librato"},
				Input:    InputConfig{Path: "-"},
			},
			wantErr: true,
		},
		{
			name: "duplicate backend",
			config: &Config{
				Backends: []string{BackendStdout, BackendStdout},
				Input:    InputConfig{Path: "-"},
			},
			wantErr: true,
		},
		{
			name: "missing input path",
			config: &Config{
				Backends: []string{BackendStdout},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()
	for env, key := range envOptions {
		t.Setenv(env, "from-"+key)
	}
	t.Setenv("GRAPHIOS_INPUT", "/tmp/records.json")

	applyEnvOverrides(cfg)

	for env, key := range envOptions {
		if got := cfg.Options[key]; got != "from-"+key {
			t.Errorf("%s: Options[%s] = %v, want %q", env, key, got, "from-"+key)
		}
	}
	if cfg.Input.Path != "/tmp/records.json" {
		t.Errorf("Input.Path = %q, want %q", cfg.Input.Path, "/tmp/records.json")
	}
}

func TestApplyEnvOverrides_EmptyValueIgnored(t *testing.T) {
	cfg := defaultConfig()
	cfg.Options["influxdb_user"] = "fileuser"
	t.Setenv("GRAPHIOS_INFLUXDB_USER", "")

	applyEnvOverrides(cfg)

	if cfg.Options["influxdb_user"] != "fileuser" {
		t.Errorf("Options[influxdb_user] = %v, want %q", cfg.Options["influxdb_user"], "fileuser")
	}
}

func TestApplyEnvOverrides_NilOptions(t *testing.T) {
	cfg := &Config{}
	t.Setenv("GRAPHIOS_INFLUXDB_USER", "envuser")

	applyEnvOverrides(cfg)

	if cfg.Options["influxdb_user"] != "envuser" {
		t.Errorf("Options[influxdb_user] = %v, want %q", cfg.Options["influxdb_user"], "envuser")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Input.Path != "-" {
		t.Errorf("defaultConfig Input.Path = %q, want %q", cfg.Input.Path, "-")
	}

	if len(cfg.Backends) != 1 || cfg.Backends[0] != BackendStdout {
		t.Errorf("Backends = %v, want [stdout]", cfg.Backends)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate, got %v", err)
	}
}
