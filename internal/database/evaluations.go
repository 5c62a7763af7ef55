package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerdictStore keeps one row per symbol holding its latest final verdict.
type VerdictStore struct {
	db *gorm.DB
}

func NewVerdictStore(db *gorm.DB) *VerdictStore {
	return &VerdictStore{db: db}
}

func (s *VerdictStore) SaveLatest(ctx context.Context, symbol string, verdict json.RawMessage) error {
	row := Evaluation{Symbol: symbol, Verdict: datatypes.JSON(verdict), UpdatedAt: time.Now().UTC()}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"verdict", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("error saving evaluation for %s: %w", symbol, err)
	}
	return nil
}

func (s *VerdictStore) GetLatest(ctx context.Context, symbol string) (Evaluation, error) {
	var row Evaluation
	if err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Evaluation{}, ErrNotFound
		}
		return Evaluation{}, fmt.Errorf("error loading evaluation for %s: %w", symbol, err)
	}
	return row, nil
}
