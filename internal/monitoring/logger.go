package monitoring

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger provides structured logging for the sentiment pipeline
type Logger struct {
	*slog.Logger
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a JSON logger on stdout at info level
func NewLogger() *Logger {
	return NewLoggerWithOptions(os.Stdout, "info", "json")
}

// NewLoggerWithOptions creates a logger writing to w with the given level and
// format ("json" or "text").
func NewLoggerWithOptions(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: format == "json",
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NopLogger discards everything. Handy in tests.
func NopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// AnalysisLogger logs the outcome of one text analysis
func (l *Logger) AnalysisLogger(inputLength int, sentiment, language, source string, confidence int, duration time.Duration, cacheHit bool) {
	l.Debug("Analysis Completed",
		"input_length", inputLength,
		"sentiment", sentiment,
		"language", language,
		"source", source,
		"confidence", confidence,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// ClassifierLogger logs an external classifier call
func (l *Logger) ClassifierLogger(model string, duration time.Duration, err error) {
	if err != nil {
		l.Log(context.Background(), slog.LevelWarn, "Classifier Call Failed",
			"model", model,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}

	l.Debug("Classifier Call",
		"model", model,
		"duration_ms", duration.Milliseconds(),
	)
}

// CacheLogger logs cache operations
func (l *Logger) CacheLogger(operation, key string, hit bool, itemCount int) {
	l.Debug("Cache Operation",
		"operation", operation,
		"key_hash", key,
		"hit", hit,
		"cache_size", itemCount,
	)
}

// BatchLogger logs a finished batch
func (l *Logger) BatchLogger(batchID string, count, fallbacks int, stats map[string]int, duration time.Duration) {
	l.Info("Batch Analyzed",
		"batch_id", batchID,
		"count", count,
		"fallbacks", fallbacks,
		"positive", stats["positive"],
		"negative", stats["negative"],
		"neutral", stats["neutral"],
		"duration_ms", duration.Milliseconds(),
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
