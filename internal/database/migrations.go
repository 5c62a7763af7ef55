package database

import (
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/database/versions/migration_0"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/database/versions/migration_1"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	migrator := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID:      "0",
			Migrate: migration_0.Migration,
		},
		{
			ID:       "1",
			Migrate:  migration_1.Migration,
			Rollback: migration_1.Rollback,
		},
	})

	migrator.InitSchema(func(txn *gorm.DB) error {
		// Run when no previous migration is recorded: create the latest schema directly
		// instead of replaying every migration.
		log.Info().Msg("clean database detected, running full schema initialization")

		return txn.AutoMigrate(&Decision{}, &Evaluation{}, &KVEntry{})
	})

	return migrator
}
