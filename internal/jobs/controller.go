package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type EvaluationRunner interface {
	Run(ctx context.Context, symbol string, limit, batchSize int, includePartials bool) (*evaluation.Result, error)
}

// Trigger carries what a dispatcher needs to start a job out of band. Origin, AdminSecret
// and Cookie come from the request that created the job.
type Trigger struct {
	JobId       string
	Origin      string
	AdminSecret string
	Cookie      string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, trigger Trigger) error
}

// ErrNoOrigin is returned by dispatchers that cannot address the service. The controller
// then runs the job inside the current process.
var ErrNoOrigin = errors.New("no origin to dispatch to")

// Controller owns the job lifecycle: queued -> running -> succeeded | failed.
type Controller struct {
	store      *Store
	runner     EvaluationRunner
	dispatcher Dispatcher
	running    *keyedMutex
	now        func() time.Time
	log        zerolog.Logger
}

// NewController creates a controller. A nil dispatcher runs every job in a goroutine of
// the current process.
func NewController(store *Store, runner EvaluationRunner, dispatcher Dispatcher, log zerolog.Logger) *Controller {
	return &Controller{
		store:      store,
		runner:     runner,
		dispatcher: dispatcher,
		running:    newKeyedMutex(),
		now:        func() time.Time { return time.Now().UTC() },
		log:        log.With().Str("component", "job_controller").Logger(),
	}
}

// Create persists a queued job and starts it out of band. It never waits for the evaluation.
func (c *Controller) Create(ctx context.Context, symbol string, params Params, trigger Trigger) (*Record, error) {
	now := c.now()
	record := &Record{
		Id:        uuid.New().String(),
		Symbol:    symbol,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		Params:    params,
	}

	if err := c.store.Put(ctx, record); err != nil {
		return nil, err
	}
	metrics.IncreaseJobsMetric(string(StatusQueued))

	c.log.Info().Str("job_id", record.Id).Str("symbol", symbol).Int("limit", params.Limit).Int("batch_size", params.BatchSize).Msg("created evaluation job")

	trigger.JobId = record.Id
	go c.dispatch(context.WithoutCancel(ctx), trigger)

	return record, nil
}

func (c *Controller) dispatch(ctx context.Context, trigger Trigger) {
	if c.dispatcher == nil {
		c.runInline(ctx, trigger.JobId)
		return
	}

	err := c.dispatcher.Dispatch(ctx, trigger)
	switch {
	case err == nil:
		return
	case errors.Is(err, ErrNoOrigin):
		c.log.Warn().Str("job_id", trigger.JobId).Msg("no origin available, running job inline")
		c.runInline(ctx, trigger.JobId)
	default:
		c.log.Error().Err(err).Str("job_id", trigger.JobId).Msg("error dispatching job")
		c.failQueued(ctx, trigger.JobId, err.Error())
	}
}

func (c *Controller) runInline(ctx context.Context, id string) {
	if _, err := c.Advance(ctx, id); err != nil {
		c.log.Error().Err(err).Str("job_id", id).Msg("error running job inline")
	}
}

// failQueued marks a job failed only if it has not started. A dispatcher may report an
// error after the job was already picked up, e.g. when the trigger request times out.
func (c *Controller) failQueued(ctx context.Context, id, message string) {
	record, err := c.store.Get(ctx, id)
	if err != nil {
		c.log.Error().Err(err).Str("job_id", id).Msg("error loading job to mark dispatch failure")
		return
	}
	if record.Status != StatusQueued {
		return
	}

	record.Status = StatusFailed
	record.Error = message
	record.UpdatedAt = c.now()
	if err := c.store.Put(ctx, record); err != nil {
		c.log.Error().Err(err).Str("job_id", id).Msg("error marking job failed")
		return
	}
	metrics.IncreaseJobsMetric(string(StatusFailed))
}

// Advance runs a queued or running job to completion and returns the final record. A job
// that is already terminal is returned unchanged. Concurrent calls for the same job within
// this process wait for the first one instead of running the evaluation twice.
func (c *Controller) Advance(ctx context.Context, id string) (*Record, error) {
	c.running.Lock(id)
	defer c.running.Unlock(id)

	record, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status.Terminal() {
		return record, nil
	}

	record.Status = StatusRunning
	record.UpdatedAt = c.now()
	if err := c.store.Put(ctx, record); err != nil {
		return nil, err
	}
	metrics.IncreaseJobsMetric(string(StatusRunning))

	log := c.log.With().Str("job_id", id).Str("symbol", record.Symbol).Logger()
	log.Info().Msg("running evaluation job")

	result, runErr := c.runner.Run(ctx, record.Symbol, record.Params.Limit, record.Params.BatchSize, record.Params.IncludePartials)

	// Another trigger may have finished the same job while this one was running.
	if latest, err := c.store.Get(ctx, id); err == nil && latest.Status.Terminal() {
		log.Warn().Str("status", string(latest.Status)).Msg("job finished concurrently, keeping existing result")
		return latest, nil
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("evaluation job failed")
		record.Status = StatusFailed
		record.Error = runErr.Error()
	} else {
		record.Status = StatusSucceeded
		record.Result = result
	}
	record.UpdatedAt = c.now()

	if err := c.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("error saving %s job: %w", record.Status, err)
	}
	metrics.IncreaseJobsMetric(string(record.Status))

	return record, nil
}

// Poll returns the job record. With execute set, a job that is not terminal is advanced
// first and the resulting record returned.
func (c *Controller) Poll(ctx context.Context, id string, execute bool) (*Record, error) {
	record, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if execute && !record.Status.Terminal() {
		return c.Advance(ctx, id)
	}
	return record, nil
}
