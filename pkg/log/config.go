package log

import (
	"fmt"
	stdlog "log"
	"strings"
)

// Config declares logger construction in one place (level + format), so the
// CLI and server can build identical loggers from flags or environment.
type Config struct {
	Level  string // debug|info|warn|error (default info)
	Format string // text|json (default text)
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var formatter Formatter
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter), WithOutput(NewConsoleOutput())), nil
}

type stdBridge struct {
	logger Logger
}

func (b stdBridge) Write(p []byte) (int, error) {
	b.logger.Debug(strings.TrimRight(string(p), "\n"), Component("stdlog"))
	return len(p), nil
}

// RedirectStdLog routes standard-library log output (used by Pebble and
// net/http) through the provided logger at debug level.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdBridge{logger: logger})
}
