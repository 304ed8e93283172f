package analysis

import (
	"strings"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resources"
)

var (
	emojiBoost        = 0.15
	neutralEmojiBoost = 0.10
	neutralTermBoost  = 0.25
	polarTermBoost    = 0.12
)

// EmojiCounts tallies emoji occurrences per sentiment
type EmojiCounts struct {
	Positive int
	Negative int
	Neutral  int
}

func (c *EmojiCounts) add(s Sentiment, n int) {
	switch s {
	case Positive:
		c.Positive += n
	case Negative:
		c.Negative += n
	case Neutral:
		c.Neutral += n
	}
}

// Adjuster reweights classifier scores with emoji and lexicon evidence
type Adjuster struct {
	res *resources.Resources
}

// NewAdjuster creates an adjuster over the given resources
func NewAdjuster(res *resources.Resources) *Adjuster {
	return &Adjuster{res: res}
}

// Adjust boosts scores from emoji found in raw and lexicon terms found in
// normalized, then renormalizes so the result sums to 1. raw is the text
// before normalization, since normalization rewrites emoji into tokens.
// Glyphs match with or without the U+FE0F variation selector.
func (a *Adjuster) Adjust(raw, normalized string, scores ScoreVector) ScoreVector {
	bare := resources.BareGlyph(raw)

	var counts EmojiCounts
	for _, e := range a.res.Emoji() {
		n := strings.Count(bare, e.Glyph)
		if n == 0 {
			continue
		}
		s := Sentiment(e.Label)
		scores = scores.Scale(s, 1+emojiBoost*float64(n))
		counts.add(s, n)
	}

	if counts.Neutral > 0 {
		scores = scores.Scale(Neutral, 1+neutralEmojiBoost*float64(counts.Neutral))
	}

	lower := strings.ToLower(normalized)

	neutralHits := a.res.Neutral.CountHits(lower)
	scores = scores.Scale(Neutral, 1+neutralTermBoost*float64(neutralHits))

	positiveHits := a.res.Positive.CountHits(lower)
	negativeHits := a.res.Negative.CountHits(lower)
	scores = scores.Scale(Positive, 1+polarTermBoost*float64(positiveHits))
	scores = scores.Scale(Negative, 1+polarTermBoost*float64(negativeHits))

	return Renormalize(scores)
}

// Renormalize shifts every score up by half the smallest score and divides
// by the shifted total, so the result sums to 1 and a near-zero class cannot
// dominate the ratio. An all-zero vector becomes uniform.
func Renormalize(scores ScoreVector) ScoreVector {
	half := scores.Min() / 2
	shifted := ScoreVector{
		Positive: scores.Positive + half,
		Negative: scores.Negative + half,
		Neutral:  scores.Neutral + half,
	}
	total := shifted.Sum()
	if total <= 0 {
		return ScoreVector{Positive: 1.0 / 3, Negative: 1.0 / 3, Neutral: 1.0 / 3}
	}
	return ScoreVector{
		Positive: shifted.Positive / total,
		Negative: shifted.Negative / total,
		Neutral:  shifted.Neutral / total,
	}
}
