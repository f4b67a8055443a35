package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
)

// ServiceName is attached to every log entry as the "service" field.
const ServiceName = "linkstatus"

const (
	// maxValueLen caps string attributes; upstream error bodies can be large.
	maxValueLen = 2048

	redacted = "[redacted]"
)

// secretKeys are attribute keys whose values never reach the output.
var secretKeys = []string{"password", "token", "secret", "authorization"}

// Logger is the service logger: a slog.Logger carrying the service and
// version fields, with secret redaction and long-value truncation.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to the stream named by cfg.Output
// ("stderr", anything else means stdout).
func New(cfg config.LoggingConfig, version string) *Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return NewWithWriter(out, cfg, version)
}

// NewWithWriter creates a Logger that writes to w, ignoring cfg.Output.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: sanitize,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler).With(
			slog.String("service", ServiceName),
			slog.String("version", version),
		),
	}
}

// parseLevel accepts slog level names in any case, plus "warning".
// Anything unparsable selects info.
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// sanitize hides secrets and truncates long strings.
func sanitize(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, redacted)
		}
	}
	if a.Value.Kind() == slog.KindString {
		if v := a.Value.String(); len(v) > maxValueLen {
			return slog.String(a.Key, v[:maxValueLen]+"...")
		}
	}
	return a
}

// With returns a Logger with additional default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component tags every entry with component=name.
//
//	log.Component("reporter").Info("run complete") // component=reporter
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default is used before configuration has been loaded: JSON on stdout at info.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}
