package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
	"gorm.io/gorm"
)

// DecisionHistory serves decision records for evaluation runs.
type DecisionHistory struct {
	db *gorm.DB
}

func NewDecisionHistory(db *gorm.DB) *DecisionHistory {
	return &DecisionHistory{db: db}
}

// LoadDecisionHistory returns at most limit decisions for symbol, most recent first.
func (h *DecisionHistory) LoadDecisionHistory(ctx context.Context, symbol string, limit int) ([]evaluation.DecisionRecord, error) {
	var rows []Decision
	if err := h.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying decisions: %w", err)
	}

	records := make([]evaluation.DecisionRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, evaluation.DecisionRecord{
			Timestamp:       r.Timestamp,
			Timeframe:       r.Timeframe,
			Prompt:          r.Prompt,
			Action:          r.Action,
			SignalStrength:  r.SignalStrength,
			Bias:            r.Bias,
			Summary:         r.Summary,
			Reason:          r.Reason,
			DryRun:          r.DryRun,
			Snapshot:        json.RawMessage(r.Snapshot),
			ExecutionResult: json.RawMessage(r.ExecutionResult),
			Model:           r.Model,
		})
	}
	return records, nil
}

func SaveDecision(ctx context.Context, db *gorm.DB, decision *Decision) error {
	if err := db.WithContext(ctx).Create(decision).Error; err != nil {
		return fmt.Errorf("error saving decision for %s: %w", decision.Symbol, err)
	}
	return nil
}
