package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRequest logs the outcome of an HTTP request
func LogRequest(l Logger, method, url string, statusCode int, durationMs int64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	default:
		l.WarnWithFields("HTTP request client error", fields)
	}
}

// LogDownload logs a single file outcome
func LogDownload(l Logger, category, filename string, size int64, err error) {
	entry := l.WithFields(map[string]interface{}{
		"category": category,
		"file":     filename,
	})

	if err != nil {
		entry.WithError(err).Error("Download failed")
		return
	}
	entry.WithField("size", size).Info("Download completed")
}

// LogQuery logs the outcome of one query
func LogQuery(l Logger, category, query, status string, downloaded, candidates int) {
	l.InfoWithFields("Query finished", map[string]interface{}{
		"category":   category,
		"query":      query,
		"status":     status,
		"downloaded": downloaded,
		"candidates": candidates,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
