package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	queue := NewInMemoryQueue()

	require.NoError(t, queue.PublishEvaluationTask(context.Background(), EvaluationTaskPayload{JobId: "job-1"}))
	require.NoError(t, queue.PublishEvaluationTask(context.Background(), EvaluationTaskPayload{JobId: "job-2"}))
	queue.Close()
	queue.Close()

	var ids []string
	for task := range queue.Tasks() {
		assert.Equal(t, EvaluationQueue, task.Type())

		var payload EvaluationTaskPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		ids = append(ids, payload.JobId)
		assert.NoError(t, task.Ack())
	}
	assert.Equal(t, []string{"job-1", "job-2"}, ids)

	err := queue.PublishEvaluationTask(context.Background(), EvaluationTaskPayload{JobId: "job-3"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestInMemoryQueuePublishRespectsContext(t *testing.T) {
	queue := NewInMemoryQueue()
	defer queue.Close()

	for i := 0; i < cap(queue.tasks); i++ {
		require.NoError(t, queue.PublishEvaluationTask(context.Background(), EvaluationTaskPayload{JobId: "filler"}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := queue.PublishEvaluationTask(ctx, EvaluationTaskPayload{JobId: "overflow"})
	assert.ErrorIs(t, err, context.Canceled)
}
