package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch analyzes texts with bounded concurrency and reports the
// results in input order together with per-sentiment counts. Texts past the
// configured maximum batch size are dropped. A failed analysis shows up as
// a fallback result and never aborts the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, texts []string) BatchReport {
	start := time.Now()

	if len(texts) > a.config.MaxBatchSize {
		a.logger.Warn("Batch truncated",
			"received", len(texts),
			"max_batch_size", a.config.MaxBatchSize,
		)
		texts = texts[:a.config.MaxBatchSize]
	}

	results := make([]AnalysisResult, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.BatchWorkers)
	for i, text := range texts {
		g.Go(func() error {
			results[i] = a.Analyze(gctx, text)
			return nil
		})
	}
	_ = g.Wait()

	report := BatchReport{
		ID:      uuid.NewString(),
		Results: results,
		Stats:   BatchStats{Positive: 0, Negative: 0, Neutral: 0},
		Count:   len(results),
	}
	for _, r := range results {
		report.Stats[r.Sentiment]++
		if r.Source == SourceErrorFallback {
			report.Fallbacks++
		}
	}

	a.logger.BatchLogger(report.ID, report.Count, report.Fallbacks, report.Stats.counts(), time.Since(start))
	return report
}

func (s BatchStats) counts() map[string]int {
	out := make(map[string]int, len(s))
	for k, v := range s {
		out[string(k)] = v
	}
	return out
}
