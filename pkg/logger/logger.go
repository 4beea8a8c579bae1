package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelCritical sits above slog's error level and is printed as CRITICAL.
const LevelCritical = slog.Level(12)

const (
	FormatJSON = "json"
	FormatText = "text"
)

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	// BusinessError records an expected domain failure at warn level.
	BusinessError(message string, err error, args ...any)
	// InternalError records an unexpected failure at error level.
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

type Options struct {
	Level  slog.Level
	Format string
	Output io.Writer
	// Attrs are attached to every record, e.g. service name and version.
	Attrs []any
}

// RotationOptions configures file output through lumberjack.
type RotationOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type slogLogger struct {
	base *slog.Logger
}

func New(opts Options) Logger {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	handlerOptions := &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: replaceLevelName,
	}

	var handler slog.Handler
	if opts.Format == FormatText {
		handler = slog.NewTextHandler(output, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(output, handlerOptions)
	}

	base := slog.New(handler)
	if len(opts.Attrs) > 0 {
		base = base.With(opts.Attrs...)
	}
	return &slogLogger{base: base}
}

// NewFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_FILE (with the
// LOG_FILE_MAX_* rotation limits). ENV=development lowers the default level
// to debug.
func NewFromEnv(attrs ...any) Logger {
	development := strings.EqualFold(strings.TrimSpace(os.Getenv("ENV")), "development")

	opts := Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL"), development),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		Attrs:  attrs,
	}
	if path := strings.TrimSpace(os.Getenv("LOG_FILE")); path != "" {
		opts.Output = NewRotatingFile(RotationOptions{
			Path:       path,
			MaxSizeMB:  envInt("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups: envInt("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays: envInt("LOG_FILE_MAX_AGE_DAYS", 30),
		})
	}
	return New(opts)
}

func NewRotatingFile(opts RotationOptions) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return &slogLogger{base: slog.New(slog.DiscardHandler)}
}

// ParseLevel accepts slog level names plus "critical"/"fatal". Empty or
// unknown values fall back to info, or debug in development.
func ParseLevel(value string, development bool) slog.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "critical", "fatal":
		return LevelCritical
	case "warning":
		value = "warn"
	}

	var level slog.Level
	if value != "" && level.UnmarshalText([]byte(value)) == nil {
		return level
	}
	if development {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func ParseFormat(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), FormatText) {
		return FormatText
	}
	return FormatJSON
}

func (l *slogLogger) Debug(message string, args ...any) {
	l.base.Debug(message, args...)
}

func (l *slogLogger) Info(message string, args ...any) {
	l.base.Info(message, args...)
}

func (l *slogLogger) Warn(message string, args ...any) {
	l.base.Warn(message, args...)
}

func (l *slogLogger) Error(message string, args ...any) {
	l.base.Error(message, args...)
}

func (l *slogLogger) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Warn(message, withErr(err, args)...)
}

func (l *slogLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Error(message, withErr(err, args)...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

func withErr(err error, args []any) []any {
	return append([]any{"err", err.Error()}, args...)
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func replaceLevelName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level >= LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}
