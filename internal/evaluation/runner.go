package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Runner composes history loading, chunking, batch grading, aggregation and persistence
// of the latest verdict. It holds no per-run state and may be used concurrently.
type Runner struct {
	history    HistorySource
	verdicts   VerdictStore
	batches    *BatchGrader
	aggregator *Aggregator
	model      string
	log        zerolog.Logger
}

type RunnerOption func(*Runner)

// WithModelName sets the model identifier attached to samples whose record carries none.
func WithModelName(model string) RunnerOption {
	return func(r *Runner) { r.model = model }
}

func NewRunner(history HistorySource, grader Grader, verdicts VerdictStore, log zerolog.Logger, opts ...RunnerOption) *Runner {
	log = log.With().Str("component", "evaluation_runner").Logger()
	r := &Runner{
		history:    history,
		verdicts:   verdicts,
		batches:    NewBatchGrader(grader, log),
		aggregator: NewAggregator(grader, log),
		log:        log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates up to limit decisions for symbol. limit and batchSize are used as given.
func (r *Runner) Run(ctx context.Context, symbol string, limit, batchSize int, includePartials bool) (*Result, error) {
	start := time.Now()

	records, err := r.history.LoadDecisionHistory(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("error loading decision history for %s: %w", symbol, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("symbol %s: %w", symbol, ErrNoHistory)
	}

	samples := condense(records, r.model)
	stats := ComputeStats(samples)
	chunks := Chunk(samples, batchSize)

	r.log.Info().Str("symbol", symbol).Int("samples", len(samples)).Int("batch_size", batchSize).Int("batch_count", len(chunks)).Msg("starting evaluation")

	partials, err := r.batches.GradeBatches(ctx, symbol, chunks, stats)
	if err != nil {
		return nil, err
	}

	verdict, err := r.aggregator.Aggregate(ctx, symbol, stats, partials)
	if err != nil {
		return nil, err
	}

	if err := r.verdicts.SaveLatest(ctx, symbol, verdict); err != nil {
		r.log.Error().Err(err).Str("symbol", symbol).Msg("error persisting latest evaluation")
	}

	result := &Result{
		Symbol:  symbol,
		Stats:   stats,
		Samples: samples,
		Batch: BatchInfo{
			BatchSize:    batchSize,
			BatchCount:   len(chunks),
			SampleCounts: sampleCounts(chunks),
		},
		Evaluation: verdict,
	}
	if includePartials {
		result.Batches = partials
	}

	r.log.Info().Str("symbol", symbol).Int("batch_count", len(chunks)).Dur("took", time.Since(start)).Msg("evaluation complete")

	return result, nil
}
