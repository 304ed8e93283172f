package analysis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resources"
)

func newTestAdjuster(t *testing.T) *Adjuster {
	t.Helper()
	res, err := resources.New(
		map[string]string{"😊": "positive", "😡": "negative", "😐": "neutral"},
		[]string{"amazing", "recommend", "अच्छा"},
		[]string{"worst", "bakwas"},
		[]string{"ok", "theek hai"},
	)
	require.NoError(t, err)
	return NewAdjuster(res)
}

func assertDistribution(t *testing.T, v ScoreVector) {
	t.Helper()
	assert.InDelta(t, 1.0, v.Sum(), 1e-9)
	for _, s := range Sentiments {
		assert.GreaterOrEqual(t, v.Get(s), 0.0)
		assert.LessOrEqual(t, v.Get(s), 1.0)
	}
}

func TestRenormalize(t *testing.T) {
	out := Renormalize(ScoreVector{Positive: 0.5, Negative: 0.3, Neutral: 0.2})
	// min 0.2 shifts every score by 0.1
	assert.InDelta(t, 0.6/1.3, out.Positive, 1e-9)
	assert.InDelta(t, 0.4/1.3, out.Negative, 1e-9)
	assert.InDelta(t, 0.3/1.3, out.Neutral, 1e-9)
	assertDistribution(t, out)
}

func TestRenormalize_ZeroVector(t *testing.T) {
	out := Renormalize(ScoreVector{})
	assert.InDelta(t, 1.0/3, out.Positive, 1e-9)
	assert.InDelta(t, 1.0/3, out.Negative, 1e-9)
	assert.InDelta(t, 1.0/3, out.Neutral, 1e-9)
}

func TestRenormalize_IsADistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		v := ScoreVector{
			Positive: rng.Float64() * 2,
			Negative: rng.Float64() * 2,
			Neutral:  rng.Float64() * 2,
		}
		assertDistribution(t, Renormalize(v))
	}
}

func TestAdjuster_Adjust(t *testing.T) {
	a := newTestAdjuster(t)
	even := ScoreVector{Positive: 1, Negative: 1, Neutral: 1}

	tests := []struct {
		name       string
		raw        string
		normalized string
		dominant   Sentiment
	}{
		{name: "positive emoji", raw: "nice 😊", normalized: "nice  [blush]", dominant: Positive},
		{name: "negative emoji twice", raw: "😡😡", normalized: "[rage]  [rage]", dominant: Negative},
		{name: "neutral emoji", raw: "hmm 😐", normalized: "hmm  [neutral_face]", dominant: Neutral},
		{name: "positive term", raw: "Amazing", normalized: "Amazing", dominant: Positive},
		{name: "negative hinglish term", raw: "bakwas movie", normalized: "bakwas movie", dominant: Negative},
		{name: "neutral phrase", raw: "theek hai", normalized: "theek hai", dominant: Neutral},
		{name: "devanagari term", raw: "यह अच्छा है", normalized: "यह अच्छा है", dominant: Positive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := a.Adjust(tt.raw, tt.normalized, even)
			assertDistribution(t, out)
			assert.Equal(t, tt.dominant, out.Ranked()[0])
		})
	}
}

func TestAdjuster_NoEvidenceOnlyRenormalizes(t *testing.T) {
	a := newTestAdjuster(t)
	in := ScoreVector{Positive: 0.5, Negative: 0.3, Neutral: 0.2}
	assert.Equal(t, Renormalize(in), a.Adjust("plain words", "plain words", in))
}

func TestAdjuster_BoostFactors(t *testing.T) {
	a := newTestAdjuster(t)
	even := ScoreVector{Positive: 1, Negative: 1, Neutral: 1}

	t.Run("each emoji occurrence compounds linearly", func(t *testing.T) {
		out := a.Adjust("😊😊", "", even)
		// positive 1.3 against 1 and 1, shifted by half the min
		expected := Renormalize(ScoreVector{Positive: 1.3, Negative: 1, Neutral: 1})
		assert.InDelta(t, expected.Positive, out.Positive, 1e-9)
	})

	t.Run("neutral emoji get an extra boost", func(t *testing.T) {
		out := a.Adjust("😐", "", even)
		expected := Renormalize(ScoreVector{Positive: 1, Negative: 1, Neutral: 1.15 * 1.10})
		assert.InDelta(t, expected.Neutral, out.Neutral, 1e-9)
	})

	t.Run("a term counts once however often it appears", func(t *testing.T) {
		once := a.Adjust("", "ok", even)
		thrice := a.Adjust("", "ok ok ok", even)
		assert.InDelta(t, once.Neutral, thrice.Neutral, 1e-9)

		expected := Renormalize(ScoreVector{Positive: 1, Negative: 1, Neutral: 1.25})
		assert.InDelta(t, expected.Neutral, once.Neutral, 1e-9)
	})

	t.Run("distinct polar terms add up", func(t *testing.T) {
		out := a.Adjust("", "amazing, would recommend", even)
		expected := Renormalize(ScoreVector{Positive: 1.24, Negative: 1, Neutral: 1})
		assert.InDelta(t, expected.Positive, out.Positive, 1e-9)
	})

	t.Run("terms match whole words only", func(t *testing.T) {
		out := a.Adjust("", "token", even)
		assert.Equal(t, Renormalize(even), out)
	})
}

func TestAdjuster_VariationSelectorIsOptional(t *testing.T) {
	res, err := resources.New(map[string]string{"❤️": "positive"}, nil, nil, nil)
	require.NoError(t, err)
	a := NewAdjuster(res)
	even := ScoreVector{Positive: 1, Negative: 1, Neutral: 1}

	withSelector := a.Adjust("❤️ love it", "love it", even)
	bare := a.Adjust("❤ love it", "love it", even)

	assert.Equal(t, withSelector, bare)
	expected := Renormalize(ScoreVector{Positive: 1.15, Negative: 1, Neutral: 1})
	assert.InDelta(t, expected.Positive, bare.Positive, 1e-9)
}
