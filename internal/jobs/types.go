package jobs

import (
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

type Params struct {
	Limit           int  `json:"limit"`
	BatchSize       int  `json:"batch_size"`
	IncludePartials bool `json:"include_batches"`
}

// Record is the persisted state of one asynchronous evaluation.
type Record struct {
	Id        string             `json:"id"`
	Symbol    string             `json:"symbol"`
	Status    Status             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Params    Params             `json:"params"`
	Result    *evaluation.Result `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}
