package migration_1

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Decision struct {
	Model string `gorm:"size:64"`
}

type KVEntry struct {
	Key       string    `gorm:"size:255;primaryKey"`
	Value     []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// Migration records the grading model on decisions and adds the expiring key/value table used for job records.
func Migration(db *gorm.DB) error {
	if err := db.Migrator().AddColumn(&Decision{}, "Model"); err != nil {
		return fmt.Errorf("error adding model column: %w", err)
	}

	if err := db.Migrator().CreateTable(&KVEntry{}); err != nil {
		return fmt.Errorf("error creating kv_entries table: %w", err)
	}

	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&KVEntry{}); err != nil {
		return fmt.Errorf("error dropping kv_entries table: %w", err)
	}

	if err := db.Migrator().DropColumn(&Decision{}, "Model"); err != nil {
		return fmt.Errorf("error dropping model column: %w", err)
	}

	return nil
}
