package evaluation

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/metrics"
	"github.com/rs/zerolog"
)

type Aggregator struct {
	grader Grader
	log    zerolog.Logger
}

func NewAggregator(grader Grader, log zerolog.Logger) *Aggregator {
	return &Aggregator{grader: grader, log: log}
}

// Aggregate merges partial verdicts into the final verdict. A single partial is returned as is.
func (a *Aggregator) Aggregate(ctx context.Context, symbol string, stats Stats, partials []PartialVerdict) (json.RawMessage, error) {
	switch len(partials) {
	case 0:
		return nil, &GradingError{Err: errors.New("no batch evaluations to aggregate")}
	case 1:
		return partials[0].Verdict, nil
	}

	prompt, err := renderPrompt(aggregateUserPromptTmpl, aggregatePromptFields{
		Symbol:   symbol,
		Stats:    stats,
		Partials: partials,
	})
	if err != nil {
		return nil, &GradingError{Err: err}
	}

	verdict, err := a.grader.Grade(ctx, AggregateSystemPrompt, prompt)
	if err != nil {
		metrics.IncreaseGradingCallsMetric(metrics.GradingModeAggregate, metrics.OutcomeFailed)
		a.log.Error().Err(err).Str("symbol", symbol).Int("batch_count", len(partials)).Msg("aggregation failed")
		return nil, &GradingError{BatchCount: len(partials), Err: err}
	}
	metrics.IncreaseGradingCallsMetric(metrics.GradingModeAggregate, metrics.OutcomeSucceeded)

	return verdict, nil
}
