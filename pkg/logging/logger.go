// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "LINKPAGER_LOG_LEVEL"
	EnvPretty = "LINKPAGER_LOG_PRETTY"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// FromEnv returns DefaultConfig overridden by LINKPAGER_LOG_LEVEL and
// LINKPAGER_LOG_PRETTY.
func FromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Level = LogLevel(strings.ToLower(v))
	}
	if v := os.Getenv(EnvPretty); v != "" {
		cfg.Pretty, _ = strconv.ParseBool(v)
	}
	return cfg
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a logger tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-request detail
//   - each fetch (locator, status, duration)
//   - links discovered on a page, front terminations
//   - rate limit state reads
//
// Info: traversal lifecycle
//   - traversal finished (pages, outcome, duration)
//   - rate limit state healthy again
//
// Warn: degraded but continuing
//   - rate limit throttling active
//   - rate limit gate unavailable (request allowed anyway)
//   - page failure captured under the lenient policy
//
// Error: traversal aborted
//   - first transport failure under the strict policy
//   - critical rate limit blocks
//
// Context Fields:
//   - component: transport, pagination, ratelimit
//   - locator: page URL
//   - front: anchor, forward, backward
//   - status_code: HTTP status code
//   - error_class: client, server, rate_limit, network
//   - remaining: rate limit budget left
