package database

import (
	"time"

	"gorm.io/datatypes"
)

// Decision is one decision taken by the trading agent, as recorded by the agent itself.
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
	Model           string `gorm:"size:64"`
}

// Evaluation holds the latest final verdict for a symbol.
type Evaluation struct {
	Symbol    string         `gorm:"size:32;primaryKey"`
	Verdict   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

type KVEntry struct {
	Key       string    `gorm:"size:255;primaryKey"`
	Value     []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
