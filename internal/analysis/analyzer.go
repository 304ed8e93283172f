package analysis

import (
	"context"
	"math"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resources"
)

const (
	// MaxInputLength is the model's input limit in characters
	MaxInputLength = 512

	DefaultTimeout      = 10 * time.Second
	DefaultBatchWorkers = 4
	DefaultMaxBatchSize = 1000

	scoreDecimals = 4
)

// Config tunes the analyzer. Zero values select the defaults.
type Config struct {
	Timeout      time.Duration // bound on one classifier call
	CacheSize    int           // result cache capacity
	BatchWorkers int           // concurrent analyses per batch
	MaxBatchSize int           // texts beyond this are dropped from a batch
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheSize <= 0 {
		c.CacheSize = cache.DefaultCapacity
	}
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = DefaultBatchWorkers
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	return c
}

// Option customizes an Analyzer
type Option func(*Analyzer)

// WithLogger sets the analyzer's logger
func WithLogger(logger *monitoring.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// WithMetrics sets the metrics the analyzer and its cache report to
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(a *Analyzer) { a.metrics = metrics }
}

// WithHealthTracker records every classifier outcome on tracker
func WithHealthTracker(tracker *resilience.HealthTracker) Option {
	return func(a *Analyzer) { a.health = tracker }
}

// Analyzer orchestrates the full analysis pipeline: truncate, normalize,
// classify, adjust and derive the verdict. Results are memoized by input
// text and concurrent requests for the same text share one computation.
type Analyzer struct {
	config       Config
	preprocessor *Preprocessor
	classifier   *Classifier
	adjuster     *Adjuster
	cache        *cache.Cache[AnalysisResult]
	group        singleflight.Group
	modelName    string

	logger  *monitoring.Logger
	metrics *monitoring.Metrics
	health  *resilience.HealthTracker
}

// NewAnalyzer creates a new analyzer with all components
func NewAnalyzer(res *resources.Resources, model StarModel, config Config, opts ...Option) (*Analyzer, error) {
	if res == nil {
		return nil, errors.NewConfigurationError("analyzer requires loaded resources", nil)
	}

	a := &Analyzer{
		config:       config.withDefaults(),
		preprocessor: NewPreprocessor(),
		classifier:   NewClassifier(model),
		adjuster:     NewAdjuster(res),
		modelName:    "star-model",
	}
	if named, ok := model.(interface{ Model() string }); ok {
		a.modelName = named.Model()
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = monitoring.NopLogger()
	}

	results, err := cache.New[AnalysisResult](a.config.CacheSize, a.metrics, a.logger)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid result cache size", err)
	}
	a.cache = results

	return a, nil
}

// CacheStats exposes the result cache statistics
func (a *Analyzer) CacheStats() map[string]interface{} {
	return a.cache.Stats()
}

// Analyze returns the verdict for text. It never fails: when the classifier
// cannot be consulted the degraded fallback result is returned, and that
// result is not memoized.
func (a *Analyzer) Analyze(ctx context.Context, text string) AnalysisResult {
	start := time.Now()

	if result, ok := a.cache.Get(text); ok {
		a.record(text, result, time.Since(start), true)
		return result.Clone()
	}

	v, _, _ := a.group.Do(text, func() (interface{}, error) {
		// a concurrent flight may have filled the cache since our miss
		if result, ok := a.cache.Peek(text); ok {
			return result, nil
		}
		result, ok := a.compute(ctx, text)
		if ok {
			a.cache.Add(text, result)
		}
		return result, nil
	})

	// the flight value is shared with the cache and other waiters
	result := v.(AnalysisResult).Clone()
	a.record(text, result, time.Since(start), false)
	return result
}

// compute runs the pipeline once. The bool reports whether the result came
// from the model and may be memoized.
func (a *Analyzer) compute(ctx context.Context, text string) (AnalysisResult, bool) {
	raw := Truncate(text, MaxInputLength)
	normalized := a.preprocessor.Preprocess(raw)

	// the flight is shared, so one caller going away must not cancel it
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Timeout)
	defer cancel()

	callStart := time.Now()
	scores, err := a.classifier.Score(callCtx, normalized)
	elapsed := time.Since(callStart)

	a.metrics.RecordClassifierCall(elapsed, err)
	if a.health != nil {
		a.health.Record(err)
	}
	if err != nil {
		if appErr := errors.ToAppError(err); appErr != nil {
			errors.LogError(a.logger.Logger, appErr,
				"model", a.modelName,
				"duration_ms", elapsed.Milliseconds(),
				"input_length", utf8.RuneCountInString(raw),
			)
		}
		return FallbackResult(), false
	}
	a.logger.ClassifierLogger(a.modelName, elapsed, nil)

	adjusted := a.adjuster.Adjust(raw, normalized, scores)
	ranked := adjusted.Ranked()

	dominant := ranked[0]
	var secondary *Sentiment
	secondaryScore := 0.0
	if len(ranked) > 1 {
		s := ranked[1]
		secondary = &s
		secondaryScore = adjusted.Get(s)
	}

	return AnalysisResult{
		Sentiment:  dominant,
		Confidence: Confidence(adjusted.Get(dominant), secondaryScore),
		Language:   DetectLanguage(normalized),
		Breakdown: &Breakdown{
			RawScores:      adjusted.Rounded(scoreDecimals),
			DominantClass:  dominant,
			SecondaryClass: secondary,
		},
		Source: SourceModel,
	}, true
}

func (a *Analyzer) record(text string, result AnalysisResult, duration time.Duration, cacheHit bool) {
	a.metrics.RecordAnalysis(string(result.Sentiment), string(result.Language), string(result.Source))
	a.logger.AnalysisLogger(utf8.RuneCountInString(text), string(result.Sentiment), string(result.Language),
		string(result.Source), result.Confidence, duration, cacheHit)
}

// Confidence maps the gap between the dominant and secondary scores to an
// integer in [1, 100]. A gap of 0 gives 25 and a gap of 0.6 gives 100.
func Confidence(dominant, secondary float64) int {
	c := clip(math.Round((dominant-secondary)*125+25), 1, 100)
	return int(c)
}

// Truncate returns the first n characters of text
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
