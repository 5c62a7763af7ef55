package migration_0

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Decision struct {
	Id              uint      `gorm:"primaryKey;autoIncrement"`
	Symbol          string    `gorm:"size:32;not null;index:idx_decisions_symbol_timestamp,priority:1"`
	Timestamp       time.Time `gorm:"not null;index:idx_decisions_symbol_timestamp,priority:2"`
	Timeframe       string    `gorm:"size:16"`
	Prompt          string
	Action          string `gorm:"size:20"`
	SignalStrength  string `gorm:"size:20"`
	Bias            string `gorm:"size:20"`
	Summary         string
	Reason          string
	DryRun          bool `gorm:"default:false"`
	Snapshot        datatypes.JSON
	ExecutionResult datatypes.JSON
}

type Evaluation struct {
	Symbol    string         `gorm:"size:32;primaryKey"`
	Verdict   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&Decision{}, &Evaluation{}); err != nil {
		return fmt.Errorf("initial migration failed: %w", err)
	}
	return nil
}
