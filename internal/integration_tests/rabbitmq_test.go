//go:build integration

package integrationtests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/database"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/jobs"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRabbitMQ(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	url := setupRabbitMQContainer(t, ctx)

	publisher, err := messaging.NewRabbitMQPublisher(url)
	require.NoError(t, err)
	defer publisher.Close()

	receiver, err := messaging.NewRabbitMQReceiver(url)
	require.NoError(t, err)
	defer receiver.Close()

	payload := messaging.EvaluationTaskPayload{JobId: uuid.New().String()}
	require.NoError(t, publisher.PublishEvaluationTask(ctx, payload))

	select {
	case task := <-receiver.Tasks():
		assert.Equal(t, messaging.EvaluationQueue, task.Type())

		var received messaging.EvaluationTaskPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &received))
		assert.Equal(t, payload, received)

		require.NoError(t, task.Ack())
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for task")
	}
}

func TestQueuedEvaluationWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	url := setupRabbitMQContainer(t, ctx)
	db := createDB(t)
	seedDecisions(t, db, "BTCUSD", 12)

	runner := evaluation.NewRunner(database.NewDecisionHistory(db), &countingGrader{}, database.NewVerdictStore(db), zerolog.Nop())
	store := jobs.NewStore(database.NewKVStore(db), time.Hour)

	publisher, err := messaging.NewRabbitMQPublisher(url)
	require.NoError(t, err)
	defer publisher.Close()

	api := jobs.NewController(store, runner, jobs.NewQueueDispatcher(publisher), zerolog.Nop())

	receiver, err := messaging.NewRabbitMQReceiver(url)
	require.NoError(t, err)

	worker := jobs.NewTaskProcessor(jobs.NewController(store, runner, nil, zerolog.Nop()), receiver, zerolog.Nop())
	go worker.Start()
	defer worker.Stop()

	record, err := api.Create(ctx, "BTCUSD", jobs.Params{Limit: 12, BatchSize: 5}, jobs.Trigger{})
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusQueued, record.Status)

	require.Eventually(t, func() bool {
		current, err := store.Get(ctx, record.Id)
		return err == nil && current.Status.Terminal()
	}, time.Minute, 200*time.Millisecond)

	final, err := store.Get(ctx, record.Id)
	require.NoError(t, err)
	require.Equal(t, jobs.StatusSucceeded, final.Status, final.Error)
	assert.Equal(t, 12, final.Result.Stats.TotalSamples)
	assert.JSONEq(t, `{"overall_score":8,"summary":"merged"}`, string(final.Result.Evaluation))

	latest, err := database.NewVerdictStore(db).GetLatest(ctx, "BTCUSD")
	require.NoError(t, err)
	assert.JSONEq(t, `{"overall_score":8,"summary":"merged"}`, string(latest.Verdict))
}
