//go:build integration

package integrationtests

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/database"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	minioUsername = "admin"
	minioPassword = "password"
)

func createDB(t *testing.T) *gorm.DB {
	uri := setupPostgresContainer(t, context.Background())
	db, err := database.NewDatabase(uri, "")
	require.NoError(t, err)

	return db
}

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	dbName, dbUser, dbPassword := "test_db", "test_user", "test_password"

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	t.Cleanup(func() {
		err := postgresContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate PostgreSQL container")
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get PostgreSQL connection string")

	return connStr
}

func setupRabbitMQContainer(t *testing.T, ctx context.Context) string {
	rabbitmqContainer, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management-alpine")
	require.NoError(t, err, "Failed to start RabbitMQ container")

	t.Cleanup(func() {
		err := rabbitmqContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate RabbitMQ container")
	})

	connStr, err := rabbitmqContainer.AmqpURL(ctx)
	require.NoError(t, err, "Failed to get RabbitMQ AMQP URL")

	return connStr
}

func setupMinioContainer(t *testing.T, ctx context.Context) string {
	minioContainer, err := minio.Run(
		ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername(minioUsername),
		minio.WithPassword(minioPassword),
	)
	require.NoError(t, err, "Failed to start MinIO container")

	t.Cleanup(func() {
		err := minioContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate MinIO container")
	})

	connStr, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MinIO connection string")

	return "http://" + connStr
}

func seedDecisions(t *testing.T, db *gorm.DB, symbol string, n int) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	actions := []string{"BUY", "HOLD", "SELL", "HOLD"}
	for i := 0; i < n; i++ {
		require.NoError(t, database.SaveDecision(context.Background(), db, &database.Decision{
			Symbol:          symbol,
			Timestamp:       base.Add(time.Duration(i) * 15 * time.Minute),
			Timeframe:       "15m",
			Action:          actions[i%len(actions)],
			Summary:         fmt.Sprintf("decision %d", i),
			Snapshot:        datatypes.JSON(fmt.Sprintf(`{"price":%d}`, 100+i)),
			ExecutionResult: datatypes.JSON(`{"filled":true}`),
			Model:           "gpt-test",
		}))
	}
}

type countingGrader struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGrader) Grade(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++

	if systemPrompt == evaluation.AggregateSystemPrompt {
		return json.RawMessage(`{"overall_score":8,"summary":"merged"}`), nil
	}
	return json.RawMessage(fmt.Sprintf(`{"overall_score":%d}`, g.calls)), nil
}
