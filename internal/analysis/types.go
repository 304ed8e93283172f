package analysis

import (
	"math"
	"sort"
)

// Sentiment is one of the three verdict classes
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Sentiments lists the classes in their fixed tie-break order
var Sentiments = []Sentiment{Positive, Negative, Neutral}

// Language is the detected script/language tag of a text
type Language string

const (
	English  Language = "english"
	Hindi    Language = "hindi"
	Hinglish Language = "hinglish"
	Mixed    Language = "mixed"
	Unknown  Language = "unknown"
)

// Source records whether a result came from the model or the fallback path
type Source string

const (
	SourceModel         Source = "model"
	SourceErrorFallback Source = "error-fallback"
)

// ScoreVector holds a score for each sentiment class
type ScoreVector struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Get returns the score for s
func (v ScoreVector) Get(s Sentiment) float64 {
	switch s {
	case Positive:
		return v.Positive
	case Negative:
		return v.Negative
	case Neutral:
		return v.Neutral
	}
	return 0
}

// With returns a copy of v with the score for s replaced
func (v ScoreVector) With(s Sentiment, score float64) ScoreVector {
	switch s {
	case Positive:
		v.Positive = score
	case Negative:
		v.Negative = score
	case Neutral:
		v.Neutral = score
	}
	return v
}

// Scale returns a copy of v with the score for s multiplied by factor
func (v ScoreVector) Scale(s Sentiment, factor float64) ScoreVector {
	return v.With(s, v.Get(s)*factor)
}

// Sum returns the total of all three scores
func (v ScoreVector) Sum() float64 {
	return v.Positive + v.Negative + v.Neutral
}

// Min returns the smallest of the three scores
func (v ScoreVector) Min() float64 {
	return math.Min(v.Positive, math.Min(v.Negative, v.Neutral))
}

// Rounded returns v with every score rounded to the given decimal places
func (v ScoreVector) Rounded(places int) ScoreVector {
	return ScoreVector{
		Positive: roundTo(v.Positive, places),
		Negative: roundTo(v.Negative, places),
		Neutral:  roundTo(v.Neutral, places),
	}
}

// Ranked returns the classes ordered by descending score. Ties keep the
// fixed positive, negative, neutral order.
func (v ScoreVector) Ranked() []Sentiment {
	ranked := append([]Sentiment(nil), Sentiments...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return v.Get(ranked[i]) > v.Get(ranked[j])
	})
	return ranked
}

// Breakdown explains how a verdict was reached
type Breakdown struct {
	RawScores      ScoreVector `json:"raw_scores"`
	DominantClass  Sentiment   `json:"dominant_class"`
	SecondaryClass *Sentiment  `json:"secondary_class"`
}

// AnalysisResult is the verdict for one text. Breakdown is nil on the
// fallback path.
type AnalysisResult struct {
	Sentiment  Sentiment  `json:"sentiment"`
	Confidence int        `json:"confidence"`
	Language   Language   `json:"language"`
	Breakdown  *Breakdown `json:"breakdown,omitempty"`
	Source     Source     `json:"source"`
}

// Clone returns a copy of r that shares no memory with it
func (r AnalysisResult) Clone() AnalysisResult {
	if r.Breakdown == nil {
		return r
	}
	b := *r.Breakdown
	if b.SecondaryClass != nil {
		s := *b.SecondaryClass
		b.SecondaryClass = &s
	}
	r.Breakdown = &b
	return r
}

// FallbackResult is returned when the classifier could not be consulted
func FallbackResult() AnalysisResult {
	return AnalysisResult{
		Sentiment:  Neutral,
		Confidence: 1,
		Language:   Unknown,
		Source:     SourceErrorFallback,
	}
}

// BatchStats counts verdicts across a batch
type BatchStats map[Sentiment]int

// BatchReport is the outcome of analyzing a batch of texts, in input order
type BatchReport struct {
	ID        string           `json:"id"`
	Results   []AnalysisResult `json:"results"`
	Stats     BatchStats       `json:"sentiment_stats"`
	Count     int              `json:"count"`
	Fallbacks int              `json:"fallbacks"`
}
