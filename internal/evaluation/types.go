package evaluation

import (
	"context"
	"encoding/json"
	"time"
)

// DecisionRecord is one historical trading decision as returned by the history source.
type DecisionRecord struct {
	Timestamp       time.Time
	Timeframe       string
	Prompt          string
	Action          string
	SignalStrength  string
	Bias            string
	Summary         string
	Reason          string
	DryRun          bool
	Snapshot        json.RawMessage
	ExecutionResult json.RawMessage
	Model           string
}

// Sample is the projection of a DecisionRecord that is sent to the grader.
type Sample struct {
	Timestamp       time.Time       `json:"timestamp"`
	Timeframe       string          `json:"timeframe,omitempty"`
	Prompt          string          `json:"prompt,omitempty"`
	Action          string          `json:"action,omitempty"`
	SignalStrength  string          `json:"signal_strength,omitempty"`
	Bias            string          `json:"bias,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	DryRun          bool            `json:"dry_run"`
	Snapshot        json.RawMessage `json:"snapshot,omitempty"`
	ExecutionResult json.RawMessage `json:"execution_result,omitempty"`
	Model           string          `json:"ai_model,omitempty"`
}

// PartialVerdict is the grader output for a single chunk of samples.
type PartialVerdict struct {
	Batch       int             `json:"batch"`
	SampleCount int             `json:"sample_count"`
	Verdict     json.RawMessage `json:"evaluation"`
}

type BatchInfo struct {
	BatchSize    int   `json:"batch_size"`
	BatchCount   int   `json:"batch_count"`
	SampleCounts []int `json:"sample_counts"`
}

// Result is the outcome of a complete evaluation run for one symbol.
type Result struct {
	Symbol     string           `json:"symbol"`
	Stats      Stats            `json:"stats"`
	Samples    []Sample         `json:"samples"`
	Batch      BatchInfo        `json:"batch"`
	Evaluation json.RawMessage  `json:"evaluation"`
	Batches    []PartialVerdict `json:"batches,omitempty"`
}

type HistorySource interface {
	LoadDecisionHistory(ctx context.Context, symbol string, limit int) ([]DecisionRecord, error)
}

// Grader maps a (system prompt, user prompt) pair to an opaque JSON verdict.
type Grader interface {
	Grade(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error)
}

// VerdictStore keeps the latest final verdict per symbol.
type VerdictStore interface {
	SaveLatest(ctx context.Context, symbol string, verdict json.RawMessage) error
}

func condense(records []DecisionRecord, fallbackModel string) []Sample {
	samples := make([]Sample, 0, len(records))
	for _, r := range records {
		model := r.Model
		if model == "" {
			model = fallbackModel
		}
		samples = append(samples, Sample{
			Timestamp:       r.Timestamp,
			Timeframe:       r.Timeframe,
			Prompt:          r.Prompt,
			Action:          r.Action,
			SignalStrength:  r.SignalStrength,
			Bias:            r.Bias,
			Summary:         r.Summary,
			Reason:          r.Reason,
			DryRun:          r.DryRun,
			Snapshot:        r.Snapshot,
			ExecutionResult: r.ExecutionResult,
			Model:           model,
		})
	}
	return samples
}
