// Package logger provides structured logging on top of zerolog.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type contextKey string

// RequestIDKey is the context key the request-id middleware stores under.
const RequestIDKey contextKey = "request_id"

type Logger struct {
	zerolog.Logger
}

// New builds a JSON logger, or a console logger when env is "development".
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) *Logger {
	level := zerolog.InfoLevel
	if strings.EqualFold(env, "development") {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(w).Level(level).With().Timestamp().Str("service", "tourdesk").Logger()
	return &Logger{Logger: zl}
}

// Nop discards everything. Used by tests and optional collaborators.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.With().Str("component", name).Logger()}
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return &Logger{Logger: l.With().Str("request_id", requestID).Logger()}
	}
	return l
}

func (l *Logger) HTTPRequest(method, path string, status int, latency time.Duration, clientIP, requestID string) {
	ev := l.Info()
	if status >= 500 {
		ev = l.Error()
	} else if status >= 400 {
		ev = l.Warn()
	}
	ev.Str("method", method).
		Str("path", path).
		Int("status", status).
		Float64("latency_ms", float64(latency.Microseconds())/1000).
		Str("client_ip", clientIP).
		Str("request_id", requestID).
		Msg("http_request")
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn().Str("client_ip", clientIP).Str("path", path).Msg("rate_limit_exceeded")
}

// AuthFailed records why an admin request was rejected. The reason never
// reaches the client.
func (l *Logger) AuthFailed(clientIP, path, reason string) {
	l.Warn().Str("client_ip", clientIP).Str("path", path).Str("reason", reason).Msg("auth_failed")
}

func (l *Logger) StorageError(operation string, err error) {
	l.Error().Str("operation", operation).Err(err).Msg("storage_error")
}
