// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for user ID
	UserIDKey contextKey = "user_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger writing to w. Tests use it with io.Discard.
func NewWithWriter(env string, w io.Writer) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewWithWriter("production", io.Discard)
}

// WithContext returns a logger with request_id and user_id extracted from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		newLogger = newLogger.WithUserID(userID)
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithUserID returns a logger with user ID
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("user_id", userID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// MatchEvaluated logs the summary of one trigger run.
func (l *Logger) MatchEvaluated(trigger, subjectID string, candidates, matched, created, failed int) {
	l.Info("match_evaluated",
		slog.String("trigger", trigger),
		slog.String("subject_id", subjectID),
		slog.Int("candidates", candidates),
		slog.Int("matched", matched),
		slog.Int("created", created),
		slog.Int("failed", failed),
	)
}

// CandidatesTruncated warns that a run hit the candidate bound.
func (l *Logger) CandidatesTruncated(trigger, subjectID string, limit int) {
	l.Warn("match_candidates_truncated",
		slog.String("trigger", trigger),
		slog.String("subject_id", subjectID),
		slog.Int("limit", limit),
	)
}

// NotificationCreated logs a newly stored match notification.
func (l *Logger) NotificationCreated(kind, leadID, propertyID, addresseeID string) {
	l.Info("match_notification_created",
		slog.String("kind", kind),
		slog.String("lead_id", leadID),
		slog.String("property_id", propertyID),
		slog.String("addressee_id", addresseeID),
	)
}

// PairFailed logs a failed (lead, property) evaluation inside a batch.
func (l *Logger) PairFailed(leadID, propertyID string, err error) {
	l.Warn("match_pair_failed",
		slog.String("lead_id", leadID),
		slog.String("property_id", propertyID),
		slog.String("error", err.Error()),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
