package analysis

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
)

// StarScore is the probability the ordinal model gives one star label
type StarScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// StarModel is the external 5-class ordinal sentiment model. Predict returns
// a probability for each of "1 star" … "5 stars".
type StarModel interface {
	Predict(ctx context.Context, text string) ([]StarScore, error)
}

// StarModelFunc adapts a plain function to StarModel
type StarModelFunc func(ctx context.Context, text string) ([]StarScore, error)

// Predict calls f
func (f StarModelFunc) Predict(ctx context.Context, text string) ([]StarScore, error) {
	return f(ctx, text)
}

// starWeight maps an ordinal label to the class it evidences and how strongly.
// The middle star is weighted up and the near-extremes down to offset the
// model's pull toward 1 and 5 stars.
type starWeight struct {
	label     string
	sentiment Sentiment
	weight    float64
}

var starWeights = []starWeight{
	{"1 star", Negative, 1.1},
	{"2 stars", Negative, 0.7},
	{"3 stars", Neutral, 1.4},
	{"4 stars", Positive, 0.7},
	{"5 stars", Positive, 1.1},
}

// Classifier wraps a StarModel and folds its five star probabilities into
// a weighted three-class vector.
type Classifier struct {
	model StarModel
}

// NewClassifier creates a classifier over model
func NewClassifier(model StarModel) *Classifier {
	return &Classifier{model: model}
}

// Score invokes the model on text and returns the unnormalized weighted
// vector. Every failure, including bad model output, comes back as a
// classifier error.
func (c *Classifier) Score(ctx context.Context, text string) (ScoreVector, error) {
	if c.model == nil {
		return ScoreVector{}, errors.NewClassifierError(errors.FailureUnavailable, "no classifier model configured", nil)
	}

	stars, err := c.model.Predict(ctx, text)
	if err != nil {
		if errors.IsClassifierError(err) {
			return ScoreVector{}, err
		}
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return ScoreVector{}, errors.NewClassifierError(errors.FailureTimeout, "classifier call timed out", err)
		}
		return ScoreVector{}, errors.NewClassifierError(errors.FailureUnavailable, "classifier call failed", err)
	}

	return WeightStars(stars)
}

// WeightStars applies the star weight table to a model prediction
func WeightStars(stars []StarScore) (ScoreVector, error) {
	byLabel := make(map[string]float64, len(stars))
	for _, s := range stars {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) || s.Score < 0 {
			return ScoreVector{}, errors.NewClassifierError(errors.FailureMalformed,
				fmt.Sprintf("invalid probability %v for %q", s.Score, s.Label), nil)
		}
		byLabel[s.Label] = s.Score
	}

	var scores ScoreVector
	for _, w := range starWeights {
		p, ok := byLabel[w.label]
		if !ok {
			return ScoreVector{}, errors.NewClassifierError(errors.FailureMalformed,
				fmt.Sprintf("classifier output is missing %q", w.label), nil)
		}
		scores = scores.With(w.sentiment, scores.Get(w.sentiment)+p*w.weight)
	}
	return scores, nil
}
