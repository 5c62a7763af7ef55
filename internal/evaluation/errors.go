package evaluation

import (
	"errors"
	"fmt"
)

// ErrNoHistory is returned when the history source has no decisions for the requested symbol.
var ErrNoHistory = errors.New("no_history")

// GradingError identifies which grading call of a run failed.
type GradingError struct {
	Batch      int // 0 for the aggregation call
	BatchCount int
	Err        error
}

func (e *GradingError) Error() string {
	if e.Batch == 0 {
		return fmt.Sprintf("aggregation failed: %v", e.Err)
	}
	return fmt.Sprintf("batch %d/%d failed: %v", e.Batch, e.BatchCount, e.Err)
}

func (e *GradingError) Unwrap() error {
	return e.Err
}
