package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sentiment"

// Metrics holds the Prometheus collectors for the analysis pipeline
type Metrics struct {
	Analyses         *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheEvictions   prometheus.Counter
	ClassifierCalls  *prometheus.CounterVec
	ClassifierTiming prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of analyzed texts, by verdict, detected language and source.",
		}, []string{"sentiment", "language", "source"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "result_cache",
			Name:      "hits_total",
			Help:      "Total number of analyses served from the result cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "result_cache",
			Name:      "misses_total",
			Help:      "Total number of result cache misses.",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "result_cache",
			Name:      "evictions_total",
			Help:      "Total number of entries evicted from the result cache.",
		}),
		ClassifierCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "calls_total",
			Help:      "Total number of external classifier invocations, by outcome.",
		}, []string{"outcome"}),
		ClassifierTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "call_duration_seconds",
			Help:      "Latency of external classifier invocations.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.Analyses, m.CacheHits, m.CacheMisses, m.CacheEvictions, m.ClassifierCalls, m.ClassifierTiming)
	return m
}

// RecordAnalysis counts a finished analysis
func (m *Metrics) RecordAnalysis(sentiment, language, source string) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(sentiment, language, source).Inc()
}

// RecordClassifierCall counts a classifier invocation and observes its latency
func (m *Metrics) RecordClassifierCall(duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ClassifierCalls.WithLabelValues(outcome).Inc()
	m.ClassifierTiming.Observe(duration.Seconds())
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// IncrementCacheEviction increments cache eviction count
func (m *Metrics) IncrementCacheEviction() {
	if m == nil {
		return
	}
	m.CacheEvictions.Inc()
}
