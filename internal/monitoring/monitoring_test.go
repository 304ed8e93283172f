package monitoring

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLoggerWritesTimestampKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(&buf, "info", "json")

	logger.SystemLogger("startup", "resources loaded")

	out := buf.String()
	assert.Contains(t, out, `"timestamp"`)
	assert.Contains(t, out, `"event":"startup"`)
	assert.NotContains(t, out, `"time"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(&buf, "info", "text")

	logger.AnalysisLogger(12, "positive", "english", "model", 80, time.Millisecond, false)
	assert.Empty(t, buf.String(), "analysis lines are debug level")

	logger.ClassifierLogger("nlptown", time.Millisecond, errors.New("boom"))
	assert.Contains(t, buf.String(), "Classifier Call Failed")
}

func TestMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordAnalysis("positive", "english", "model")
	m.RecordAnalysis("positive", "english", "model")
	m.RecordAnalysis("neutral", "unknown", "error-fallback")
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementCacheMiss()
	m.IncrementCacheEviction()
	m.RecordClassifierCall(10*time.Millisecond, nil)
	m.RecordClassifierCall(20*time.Millisecond, errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Analyses.WithLabelValues("positive", "english", "model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("neutral", "unknown", "error-fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierCalls.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierCalls.WithLabelValues("error")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAnalysis("positive", "english", "model")
		m.RecordClassifierCall(time.Millisecond, nil)
		m.IncrementCacheHit()
		m.IncrementCacheMiss()
		m.IncrementCacheEviction()
	})
}
