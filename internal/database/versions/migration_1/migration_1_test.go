package migration_1

import (
	"testing"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/database/versions/migration_0"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrationAndRollback(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration_0.Migration(db))

	require.NoError(t, Migration(db))
	assert.True(t, db.Migrator().HasColumn(&Decision{}, "model"))
	assert.True(t, db.Migrator().HasTable(&KVEntry{}))

	require.NoError(t, Rollback(db))
	assert.False(t, db.Migrator().HasTable(&KVEntry{}))
	assert.False(t, db.Migrator().HasColumn(&Decision{}, "model"))
}
