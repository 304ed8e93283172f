package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/resources"
)

// fiveStarSkew is a prediction leaning hard towards "5 stars"
var fiveStarSkew = []StarScore{
	{Label: "5 stars", Score: 0.70},
	{Label: "4 stars", Score: 0.20},
	{Label: "3 stars", Score: 0.05},
	{Label: "2 stars", Score: 0.03},
	{Label: "1 star", Score: 0.02},
}

var oneStarSkew = []StarScore{
	{Label: "1 star", Score: 0.75},
	{Label: "2 stars", Score: 0.15},
	{Label: "3 stars", Score: 0.05},
	{Label: "4 stars", Score: 0.03},
	{Label: "5 stars", Score: 0.02},
}

// stubModel is a StarModel that counts calls and remembers its inputs
type stubModel struct {
	calls  atomic.Int32
	mu     sync.Mutex
	inputs []string
	fn     func(ctx context.Context, text string) ([]StarScore, error)
}

func newStubModel(fn func(ctx context.Context, text string) ([]StarScore, error)) *stubModel {
	return &stubModel{fn: fn}
}

func fixedModel(stars []StarScore) *stubModel {
	return newStubModel(func(context.Context, string) ([]StarScore, error) {
		return stars, nil
	})
}

func (m *stubModel) Predict(ctx context.Context, text string) ([]StarScore, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()
	return m.fn(ctx, text)
}

func (m *stubModel) lastInput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return ""
	}
	return m.inputs[len(m.inputs)-1]
}

func loadResources(t testing.TB) *resources.Resources {
	t.Helper()
	res, err := resources.LoadEmbedded()
	require.NoError(t, err)
	return res
}

func newTestAnalyzer(t testing.TB, model StarModel, config Config, opts ...Option) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(loadResources(t), model, config, opts...)
	require.NoError(t, err)
	return a
}
