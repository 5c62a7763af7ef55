package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPDispatcher(t *testing.T) {
	requests := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := NewHTTPDispatcher("", 5*time.Second)
	err := dispatcher.Dispatch(context.Background(), Trigger{JobId: "job-1", Origin: server.URL + "/", AdminSecret: "s3cret", Cookie: "sess"})
	require.NoError(t, err)

	got := <-requests
	assert.Equal(t, "/api/v1/evaluations/jobs/job-1", got.URL.Path)
	assert.Equal(t, "1", got.URL.Query().Get("execute"))
	assert.Equal(t, "s3cret", got.Header.Get(api.AdminSecretHeader))
	cookie, err := got.Cookie(api.AdminSessionCookie)
	require.NoError(t, err)
	assert.Equal(t, "sess", cookie.Value)
}

func TestHTTPDispatcherConfiguredOriginWins(t *testing.T) {
	var called atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
		assert.Empty(t, r.Header.Get(api.AdminSecretHeader))
	}))
	defer server.Close()

	dispatcher := NewHTTPDispatcher(server.URL, 5*time.Second)
	require.NoError(t, dispatcher.Dispatch(context.Background(), Trigger{JobId: "job-1", Origin: "http://unreachable.invalid"}))
	assert.True(t, called.Load())
}

func TestHTTPDispatcherErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dispatcher := NewHTTPDispatcher("", 5*time.Second)

	err := dispatcher.Dispatch(context.Background(), Trigger{JobId: "job-1", Origin: server.URL})
	assert.EqualError(t, err, "worker trigger failed, status 503")

	err = dispatcher.Dispatch(context.Background(), Trigger{JobId: "job-1"})
	assert.ErrorIs(t, err, ErrNoOrigin)
}

type failingPublisher struct{}

func (failingPublisher) PublishEvaluationTask(context.Context, messaging.EvaluationTaskPayload) error {
	return errors.New("channel closed")
}

func (failingPublisher) Close() {}

func TestQueueDispatcher(t *testing.T) {
	queue := messaging.NewInMemoryQueue()
	defer queue.Close()

	require.NoError(t, NewQueueDispatcher(queue).Dispatch(context.Background(), Trigger{JobId: "job-1"}))

	task := <-queue.Tasks()
	assert.Equal(t, messaging.EvaluationQueue, task.Type())
	assert.JSONEq(t, `{"JobId":"job-1"}`, string(task.Payload()))

	err := NewQueueDispatcher(failingPublisher{}).Dispatch(context.Background(), Trigger{JobId: "job-2"})
	assert.EqualError(t, err, "worker trigger failed: channel closed")
}
