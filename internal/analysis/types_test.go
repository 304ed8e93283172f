package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreVector_Ranked(t *testing.T) {
	tests := []struct {
		name     string
		scores   ScoreVector
		expected []Sentiment
	}{
		{
			name:     "distinct scores",
			scores:   ScoreVector{Positive: 0.1, Negative: 0.6, Neutral: 0.3},
			expected: []Sentiment{Negative, Neutral, Positive},
		},
		{
			name:     "all tied keeps fixed order",
			scores:   ScoreVector{Positive: 0.2, Negative: 0.2, Neutral: 0.2},
			expected: []Sentiment{Positive, Negative, Neutral},
		},
		{
			name:     "tie for first",
			scores:   ScoreVector{Positive: 0.2, Negative: 0.4, Neutral: 0.4},
			expected: []Sentiment{Negative, Neutral, Positive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.scores.Ranked())
		})
	}
}

func TestScoreVector_Rounded(t *testing.T) {
	v := ScoreVector{Positive: 0.123456, Negative: 0.987654, Neutral: 1.0 / 3}
	assert.Equal(t, ScoreVector{Positive: 0.1235, Negative: 0.9877, Neutral: 0.3333}, v.Rounded(4))
}

func TestScoreVector_Accessors(t *testing.T) {
	v := ScoreVector{Positive: 0.5, Negative: 0.2, Neutral: 0.3}

	assert.Equal(t, 0.2, v.Get(Negative))
	assert.Equal(t, 0.0, v.Get(Sentiment("other")))
	assert.Equal(t, 0.9, v.With(Neutral, 0.9).Neutral)
	assert.InDelta(t, 1.0, v.Scale(Positive, 2).Positive, 1e-12)
	assert.Equal(t, 0.5, v.Positive, "value receivers leave the original alone")
	assert.InDelta(t, 1.0, v.Sum(), 1e-12)
	assert.Equal(t, 0.2, v.Min())
}

func TestFallbackResult(t *testing.T) {
	r := FallbackResult()
	assert.Equal(t, Neutral, r.Sentiment)
	assert.Equal(t, 1, r.Confidence)
	assert.Equal(t, Unknown, r.Language)
	assert.Equal(t, SourceErrorFallback, r.Source)
	assert.Nil(t, r.Breakdown)
	assert.Equal(t, r, r.Clone())
}

func TestAnalysisResult_Clone(t *testing.T) {
	secondary := Neutral
	r := AnalysisResult{
		Sentiment: Positive,
		Breakdown: &Breakdown{
			RawScores:      ScoreVector{Positive: 0.7, Negative: 0.1, Neutral: 0.2},
			DominantClass:  Positive,
			SecondaryClass: &secondary,
		},
	}

	c := r.Clone()
	require.Equal(t, r, c)

	c.Breakdown.RawScores.Positive = -1
	c.Breakdown.DominantClass = Negative
	*c.Breakdown.SecondaryClass = Negative

	assert.Equal(t, 0.7, r.Breakdown.RawScores.Positive)
	assert.Equal(t, Positive, r.Breakdown.DominantClass)
	assert.Equal(t, Neutral, *r.Breakdown.SecondaryClass)
}

func TestAnalysisResult_JSON(t *testing.T) {
	secondary := Neutral
	r := AnalysisResult{
		Sentiment:  Positive,
		Confidence: 80,
		Language:   English,
		Breakdown: &Breakdown{
			RawScores:      ScoreVector{Positive: 0.7, Negative: 0.1, Neutral: 0.2},
			DominantClass:  Positive,
			SecondaryClass: &secondary,
		},
		Source: SourceModel,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sentiment": "positive",
		"confidence": 80,
		"language": "english",
		"breakdown": {
			"raw_scores": {"positive": 0.7, "negative": 0.1, "neutral": 0.2},
			"dominant_class": "positive",
			"secondary_class": "neutral"
		},
		"source": "model"
	}`, string(data))

	data, err = json.Marshal(FallbackResult())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "breakdown")
}
