package evaluation

import (
	"context"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/metrics"
	"github.com/rs/zerolog"
)

// BatchGrader grades chunks one after another, in chunk order.
type BatchGrader struct {
	grader Grader
	log    zerolog.Logger
}

func NewBatchGrader(grader Grader, log zerolog.Logger) *BatchGrader {
	return &BatchGrader{grader: grader, log: log}
}

// GradeBatches returns one partial verdict per chunk. The first failing chunk aborts the run;
// the verdicts collected before it are returned alongside the error.
func (g *BatchGrader) GradeBatches(ctx context.Context, symbol string, chunks [][]Sample, stats Stats) ([]PartialVerdict, error) {
	partials := make([]PartialVerdict, 0, len(chunks))

	for i, chunk := range chunks {
		batch := i + 1
		prompt, err := renderPrompt(batchUserPromptTmpl, batchPromptFields{
			Symbol:     symbol,
			Batch:      batch,
			BatchCount: len(chunks),
			Samples:    chunk,
			Stats:      stats,
			ChunkStats: ChunkStats{
				Batch:      batch,
				BatchCount: len(chunks),
				Size:       len(chunk),
				Actions:    actionHistogram(chunk),
			},
		})
		if err != nil {
			return partials, &GradingError{Batch: batch, BatchCount: len(chunks), Err: err}
		}

		start := time.Now()
		verdict, err := g.grader.Grade(ctx, BatchSystemPrompt, prompt)
		if err != nil {
			metrics.IncreaseGradingCallsMetric(metrics.GradingModeBatch, metrics.OutcomeFailed)
			g.log.Error().Err(err).Str("symbol", symbol).Int("batch", batch).Int("batch_count", len(chunks)).Msg("batch grading failed")
			return partials, &GradingError{Batch: batch, BatchCount: len(chunks), Err: err}
		}
		metrics.IncreaseGradingCallsMetric(metrics.GradingModeBatch, metrics.OutcomeSucceeded)

		g.log.Debug().Str("symbol", symbol).Int("batch", batch).Int("batch_count", len(chunks)).Dur("took", time.Since(start)).Msg("graded batch")

		partials = append(partials, PartialVerdict{Batch: batch, SampleCount: len(chunk), Verdict: verdict})
	}

	return partials, nil
}
