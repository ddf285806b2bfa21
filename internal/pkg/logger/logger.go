// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey names a request or task scoped value copied onto log records
type ContextKey string

const (
	ContextKeyRequestID  ContextKey = "request_id"
	ContextKeyEmployeeID ContextKey = "employee_id"
	ContextKeyPosition   ContextKey = "position"
	ContextKeyClientIP   ContextKey = "client_ip"
	ContextKeyMethod     ContextKey = "method"
	ContextKeyPath       ContextKey = "path"
	ContextKeyOrderKind  ContextKey = "order_kind"
	ContextKeyOrderID    ContextKey = "order_id"
	ContextKeyTaskID     ContextKey = "task_id"
)

// contextKeys is the order context values appear in a record
var contextKeys = []ContextKey{
	ContextKeyRequestID,
	ContextKeyTaskID,
	ContextKeyEmployeeID,
	ContextKeyPosition,
	ContextKeyOrderKind,
	ContextKeyOrderID,
	ContextKeyMethod,
	ContextKeyPath,
	ContextKeyClientIP,
}

// LogConfig describes one process logger
type LogConfig struct {
	Level          string
	Format         string // json or text
	Output         string // stdout, stderr or file:<path>
	AddSource      bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Writer wins over Output
	Writer io.Writer
}

// Logger is the process logger. Components receive the embedded
// *slog.Logger; the handler chain adds context values and redacts secrets.
type Logger struct {
	*slog.Logger
}

// SetupLogger builds the process logger and makes it the slog default.
// Debug level also records the source position.
func SetupLogger(level, format, service, version, env string) *Logger {
	l := NewLogger(&LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      ParseLevel(level) <= slog.LevelDebug,
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    env,
	})
	slog.SetDefault(l.Logger)
	return l
}

// NewLogger wires sanitization -> context enrichment -> json or text output
func NewLogger(cfg *LogConfig) *Logger {
	if cfg == nil {
		cfg = &LogConfig{Level: "info", Format: "json"}
	}

	w := cfg.Writer
	if w == nil {
		w = openOutput(cfg.Output)
	}

	text := cfg.Format == "text"
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				// log aggregators read "severity" from JSON
				if !text {
					a.Key = "severity"
				}
			}
			return a
		},
	}

	var out slog.Handler = slog.NewJSONHandler(w, opts)
	if text {
		out = NewPrettyTextHandler(w, opts)
	}

	var static []slog.Attr
	for _, kv := range [][2]string{
		{"service", cfg.ServiceName},
		{"version", cfg.ServiceVersion},
		{"env", cfg.Environment},
	} {
		if kv[1] != "" {
			static = append(static, slog.String(kv[0], kv[1]))
		}
	}

	h := NewSanitizationHandler(NewContextHandler(out)).WithAttrs(static)
	return &Logger{Logger: slog.New(h)}
}

// ParseLevel accepts slog level names plus "warning"; anything else is info
func ParseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func openOutput(output string) io.Writer {
	if output == "stderr" {
		return os.Stderr
	}
	if path, ok := strings.CutPrefix(output, "file:"); ok {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return f
		}
		fmt.Fprintf(os.Stderr, "logger: %v, writing to stdout\n", err)
	}
	return os.Stdout
}

// contextAttrs reads the known keys from ctx, skipping empty values
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		switch v := ctx.Value(key).(type) {
		case nil:
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(string(key), v))
			}
		case uuid.UUID:
			if v != uuid.Nil {
				attrs = append(attrs, slog.String(string(key), v.String()))
			}
		case fmt.Stringer:
			attrs = append(attrs, slog.String(string(key), v.String()))
		default:
			attrs = append(attrs, slog.Any(string(key), v))
		}
	}
	return attrs
}
