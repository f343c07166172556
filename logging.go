package main

import (
	"fmt"
	"io"
	"os"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/rs/zerolog"
)

// Logger is the logging seam used by the login watcher, API client and pipeline.
type Logger interface {
	Log(format string, args ...any)
}

// moduleLogger writes Log calls to a zerolog sink at info level.
type moduleLogger struct {
	logger zerolog.Logger
}

func newModuleLogger(z zerolog.Logger) *moduleLogger {
	return &moduleLogger{logger: z}
}

func (m *moduleLogger) Log(format string, args ...any) {
	m.logger.Info().Msgf(format, args...)
}

// runLogger wraps a logger with a pipeline run ID prefix.
type runLogger struct {
	id   string
	base Logger
}

func (r *runLogger) Log(format string, args ...any) {
	r.base.Log("[%s] "+format, append([]any{r.id}, args...)...)
}

type nopLogger struct{}

func (nopLogger) Log(string, ...any) {}

// transportLogger adapts zerolog to the tls-client logger interface.
type transportLogger struct {
	logger zerolog.Logger
}

var _ tls_client.Logger = (*transportLogger)(nil)

func (t *transportLogger) Debug(format string, args ...any) {
	t.logger.Debug().Msgf(format, args...)
}

func (t *transportLogger) Info(format string, args ...any) {
	t.logger.Info().Msgf(format, args...)
}

func (t *transportLogger) Warn(format string, args ...any) {
	t.logger.Warn().Msgf(format, args...)
}

func (t *transportLogger) Error(format string, args ...any) {
	t.logger.Error().Msgf(format, args...)
}

// setupLogging opens the append-mode log file and returns a zerolog logger
// that writes to both the console and the file. An empty path logs to the
// console only.
func setupLogging(path string, debug bool) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	if path == "" {
		return zerolog.New(console).Level(level).With().Timestamp().Logger(), io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	out := zerolog.MultiLevelWriter(console, file)
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), file, nil
}

// shorten returns the first n characters of a secret followed by an ellipsis.
func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
