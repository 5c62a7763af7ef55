package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTask struct {
	queue   string
	payload []byte
	result  string
}

func (t *recordingTask) Type() string    { return t.queue }
func (t *recordingTask) Payload() []byte { return t.payload }
func (t *recordingTask) Ack() error      { t.result = "ack"; return nil }
func (t *recordingTask) Nack() error     { t.result = "nack"; return nil }
func (t *recordingTask) Reject() error   { t.result = "reject"; return nil }

func TestProcessTask(t *testing.T) {
	store := NewStore(newMemoryKV(), 0)
	controller := NewController(store, &stubRunner{}, dispatchFunc(func(context.Context, Trigger) error { return nil }), zerolog.Nop())
	proc := NewTaskProcessor(controller, messaging.NewInMemoryQueue(), zerolog.Nop())

	record, err := controller.Create(context.Background(), "BTCUSD", Params{Limit: 5, BatchSize: 2}, Trigger{})
	require.NoError(t, err)

	task := &recordingTask{queue: messaging.EvaluationQueue, payload: []byte(`{"JobId":"` + record.Id + `"}`)}
	proc.ProcessTask(task)
	assert.Equal(t, "ack", task.result)
	assert.Equal(t, StatusSucceeded, status(t, store, record.Id))

	unknownJob := &recordingTask{queue: messaging.EvaluationQueue, payload: []byte(`{"JobId":"missing"}`)}
	proc.ProcessTask(unknownJob)
	assert.Equal(t, "reject", unknownJob.result)

	malformed := &recordingTask{queue: messaging.EvaluationQueue, payload: []byte(`not json`)}
	proc.ProcessTask(malformed)
	assert.Equal(t, "reject", malformed.result)

	unknownQueue := &recordingTask{queue: "other_queue", payload: []byte(`{}`)}
	proc.ProcessTask(unknownQueue)
	assert.Equal(t, "reject", unknownQueue.result)
}

func TestTaskProcessorConsumesQueue(t *testing.T) {
	store := NewStore(newMemoryKV(), 0)
	queue := messaging.NewInMemoryQueue()
	controller := NewController(store, &stubRunner{}, NewQueueDispatcher(queue), zerolog.Nop())
	proc := NewTaskProcessor(controller, queue, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		proc.Start()
		close(done)
	}()

	record, err := controller.Create(context.Background(), "BTCUSD", Params{Limit: 5, BatchSize: 2}, Trigger{})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return status(t, store, record.Id) == StatusSucceeded
	}, 5*time.Second, 10*time.Millisecond)

	proc.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("processor did not stop")
	}
}
