// Package logger provides the structured logging interface used across audiofetch.
//
// It wraps zerolog behind a small Logger interface so components can attach
// fields (category, query, file) without depending on zerolog directly:
//
//	log := logger.GetLogger().WithField("category", "ambiance")
//	log.InfoWithFields("Query finished", map[string]interface{}{
//	    "query":      "forest ambiance",
//	    "downloaded": 2,
//	})
//
// Console output is human readable; when LoggingConfig.File is set every event
// is also appended to that file. NewTestLogger captures messages for tests and
// NewNopLogger discards them.
package logger
