package jobs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/metrics"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/pkg/api"
	"github.com/go-resty/resty/v2"
)

const (
	dispatchModeHTTP  = "http"
	dispatchModeQueue = "queue"
)

// HTTPDispatcher starts a job by calling the service's own poll endpoint with execute=1,
// forwarding the caller's admin credentials.
type HTTPDispatcher struct {
	client *resty.Client
	origin string
}

// NewHTTPDispatcher creates a dispatcher. origin overrides the origin of the triggering
// request when set.
func NewHTTPDispatcher(origin string, timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		client: resty.New().SetTimeout(timeout),
		origin: strings.TrimRight(origin, "/"),
	}
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, trigger Trigger) error {
	origin := d.origin
	if origin == "" {
		origin = strings.TrimRight(trigger.Origin, "/")
	}
	if origin == "" {
		return ErrNoOrigin
	}

	req := d.client.R().
		SetContext(ctx).
		SetQueryParam("execute", "1")
	if trigger.AdminSecret != "" {
		req.SetHeader(api.AdminSecretHeader, trigger.AdminSecret)
	}
	if trigger.Cookie != "" {
		req.SetCookie(&http.Cookie{Name: api.AdminSessionCookie, Value: trigger.Cookie})
	}

	res, err := req.Get(origin + api.JobPath(trigger.JobId))
	if err != nil {
		metrics.IncreaseDispatchMetric(dispatchModeHTTP, metrics.OutcomeFailed)
		return fmt.Errorf("worker trigger failed: %w", err)
	}
	if !res.IsSuccess() {
		metrics.IncreaseDispatchMetric(dispatchModeHTTP, metrics.OutcomeFailed)
		return fmt.Errorf("worker trigger failed, status %d", res.StatusCode())
	}

	metrics.IncreaseDispatchMetric(dispatchModeHTTP, metrics.OutcomeSucceeded)
	return nil
}

// QueueDispatcher hands the job to a worker through the evaluation queue.
type QueueDispatcher struct {
	publisher messaging.Publisher
}

func NewQueueDispatcher(publisher messaging.Publisher) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, trigger Trigger) error {
	if err := d.publisher.PublishEvaluationTask(ctx, messaging.EvaluationTaskPayload{JobId: trigger.JobId}); err != nil {
		metrics.IncreaseDispatchMetric(dispatchModeQueue, metrics.OutcomeFailed)
		return fmt.Errorf("worker trigger failed: %w", err)
	}
	metrics.IncreaseDispatchMetric(dispatchModeQueue, metrics.OutcomeSucceeded)
	return nil
}
