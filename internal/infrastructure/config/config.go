package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names understood by the graphios driver.
const (
	BackendInfluxDB = "influxdb"
	BackendStdout   = "stdout"
	BackendCarbon   = "carbon"
	BackendMQTT     = "mqtt"
	BackendSQLite   = "sqlite"
)

// knownBackends lists every backend name accepted in the backends section.
var knownBackends = map[string]bool{
	BackendInfluxDB: true,
	BackendStdout:   true,
	BackendCarbon:   true,
	BackendMQTT:     true,
	BackendSQLite:   true,
}

// Config is graphios.yaml. Environment variables override the file, see
// applyEnvOverrides.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Backends []string       `yaml:"backends"`
	Input    InputConfig    `yaml:"input"`
	Options  map[string]any `yaml:"options"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// InputConfig describes where check-result records are read from.
type InputConfig struct {
	// Path is a file of JSON records, or "-" for standard input.
	Path string `yaml:"path"`
}

// Load builds the configuration in three layers: defaults, then the YAML
// file at path, then GRAPHIOS_* environment variables. The result is
// validated before it is returned.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging:  LoggingConfig{Level: "info", Format: "json", Output: "stderr"},
		Backends: []string{BackendStdout},
		Input:    InputConfig{Path: "-"},
		Options:  map[string]any{},
	}
}

// envOptions maps environment variables onto backend option keys so that
// credentials can stay out of the file.
var envOptions = map[string]string{
	"GRAPHIOS_INFLUXDB_USER":     "influxdb_user",
	"GRAPHIOS_INFLUXDB_PASSWORD": "influxdb_password",
	"GRAPHIOS_MQTT_USER":         "mqtt_user",
	"GRAPHIOS_MQTT_PASSWORD":     "mqtt_password",
}

func applyEnvOverrides(cfg *Config) {
	if cfg.Options == nil {
		cfg.Options = map[string]any{}
	}
	for env, key := range envOptions {
		if v := os.Getenv(env); v != "" {
			cfg.Options[key] = v
		}
	}
	if v := os.Getenv("GRAPHIOS_INPUT"); v != "" {
		cfg.Input.Path = v
	}
}

// Validate checks the backend list and the input path. Backend options are
// checked by each backend when it is built.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Backends) == 0 {
		problems = append(problems, "at least one backend must be enabled")
	}

	seen := make(map[string]bool, len(c.Backends))
	for _, name := range c.Backends {
		if !knownBackends[name] {
			problems = append(problems, fmt.Sprintf("unknown backend %q", name))
			continue
		}
		if seen[name] {
			problems = append(problems, fmt.Sprintf("backend %q enabled twice", name))
		}
		seen[name] = true
	}

	if c.Input.Path == "" {
		problems = append(problems, "input.path is required")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
}
