package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/adrianlzt/graphios/internal/infrastructure/config"
)

// LevelCritical sits above slog.LevelError and marks failures that lose data
// or stop the process.
const LevelCritical = slog.Level(12)

// levels maps configuration names onto slog levels. Unknown names mean info.
var levels = map[string]slog.Level{
	"debug":    slog.LevelDebug,
	"info":     slog.LevelInfo,
	"warn":     slog.LevelWarn,
	"warning":  slog.LevelWarn,
	"error":    slog.LevelError,
	"critical": LevelCritical,
}

// Logger is a slog.Logger that also knows the CRITICAL level.
// It is safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds the process logger from the logging section of graphios.yaml.
// Every entry carries service=graphios and the given version.
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		w = os.Stdout
	}
	return NewWithWriter(w, cfg, version)
}

// NewWithWriter is New with an explicit destination, used by tests and by
// callers that capture log output.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	hopts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: renameCritical,
	}

	var h slog.Handler = slog.NewJSONHandler(w, hopts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, hopts)
	}

	base := slog.New(h).With("service", "graphios", "version", version)
	return &Logger{Logger: base}
}

// renameCritical prints LevelCritical as "CRITICAL" rather than "ERROR+4".
func renameCritical(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
			a.Value = slog.StringValue("CRITICAL")
		}
	}
	return a
}

func parseLevel(name string) slog.Level {
	if lvl, ok := levels[strings.ToLower(name)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// Critical logs at LevelCritical.
func (l *Logger) Critical(msg string, args ...any) {
	l.Log(context.Background(), LevelCritical, msg, args...)
}

// With returns a child logger carrying args on every entry, e.g.
// logger.With("backend", "influxdb").
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the logger used until graphios.yaml has been read: JSON on
// stderr at info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stderr"}, "dev")
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, config.LoggingConfig{Level: "critical"}, "test")
}
