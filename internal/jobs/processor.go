package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/rs/zerolog"
)

// TaskProcessor consumes evaluation tasks and advances the referenced jobs.
type TaskProcessor struct {
	controller *Controller
	reciever   messaging.Reciever
	log        zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewTaskProcessor(controller *Controller, reciever messaging.Reciever, log zerolog.Logger) *TaskProcessor {
	return &TaskProcessor{
		controller: controller,
		reciever:   reciever,
		log:        log.With().Str("component", "task_processor").Logger(),
		stop:       make(chan struct{}),
	}
}

// Start processes tasks one at a time until Stop is called or the reciever closes.
func (proc *TaskProcessor) Start() {
	proc.log.Info().Msg("starting task processor")

	tasks := proc.reciever.Tasks()
	for {
		select {
		case <-proc.stop:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			proc.ProcessTask(task)
		}
	}
}

func (proc *TaskProcessor) Stop() {
	proc.stopOnce.Do(func() {
		proc.log.Info().Msg("stopping task processor")
		close(proc.stop)
		proc.reciever.Close()
	})
}

func (proc *TaskProcessor) ProcessTask(task messaging.Task) {
	ctx := context.Background()

	switch task.Type() {
	case messaging.EvaluationQueue:
		var payload messaging.EvaluationTaskPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.JobId == "" {
			proc.log.Error().Err(err).Msg("malformed evaluation task")
			if err := task.Reject(); err != nil {
				proc.log.Error().Err(err).Msg("error rejecting message from queue")
			}
			return
		}

		record, err := proc.controller.Advance(ctx, payload.JobId)
		if err != nil {
			if errors.Is(err, ErrJobNotFound) {
				proc.log.Warn().Str("job_id", payload.JobId).Msg("job expired or unknown, dropping task")
				if err := task.Reject(); err != nil {
					proc.log.Error().Err(err).Msg("error rejecting message from queue")
				}
				return
			}
			proc.log.Error().Err(err).Str("job_id", payload.JobId).Msg("error processing evaluation task")
			if err := task.Nack(); err != nil {
				proc.log.Error().Err(err).Msg("error reporting processing failure on message from queue")
			}
			return
		}

		proc.log.Info().Str("job_id", record.Id).Str("status", string(record.Status)).Msg("processed evaluation task")
		if err := task.Ack(); err != nil {
			proc.log.Error().Err(err).Msg("error acknowledging message from queue")
		}

	default:
		proc.log.Error().Str("queue", task.Type()).Msg("received unknown task type")
		if err := task.Reject(); err != nil {
			proc.log.Error().Err(err).Msg("error rejecting message from queue")
		}
	}
}
