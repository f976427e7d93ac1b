package config

import (
	"io"
	"log/slog"

	"git.home.luguber.info/inful/qrnotes/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LoggingConfig controls the slog handler installed by the CLI.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var (
	logLevels = normalization.NewEnum("logging.level", map[string]slog.Level{
		string(LogLevelDebug): slog.LevelDebug,
		string(LogLevelInfo):  slog.LevelInfo,
		string(LogLevelWarn):  slog.LevelWarn,
		"warning":             slog.LevelWarn,
		string(LogLevelError): slog.LevelError,
	})
	logFormats = normalization.NewEnum("logging.format", map[string]LogFormat{
		string(LogFormatJSON): LogFormatJSON,
		string(LogFormatText): LogFormatText,
	})
)

// ParseLogLevel normalizes raw and maps it to a slog level.
func ParseLogLevel(raw string) (slog.Level, error) {
	l, err := logLevels.Parse(raw)
	if err != nil {
		return slog.LevelInfo, err
	}
	return l, nil
}

// ParseLogFormat normalizes raw into a LogFormat.
func ParseLogFormat(raw string) (LogFormat, error) {
	f, err := logFormats.Parse(raw)
	if err != nil {
		return LogFormatText, err
	}
	return f, nil
}

// NewLogger builds the logger described by c. verbose forces debug level.
// Invalid values fall back to info level and text output.
func (c LoggingConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, _ := ParseLogLevel(c.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	format, _ := ParseLogFormat(c.Format)
	if format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
