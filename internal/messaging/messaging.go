package messaging

import (
	"context"
	"time"
)

const (
	EvaluationQueue = "evaluation_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// EvaluationTaskPayload asks a worker to advance one evaluation job.
type EvaluationTaskPayload struct {
	JobId string
}

type Publisher interface {
	PublishEvaluationTask(ctx context.Context, payload EvaluationTaskPayload) error

	Close()
}

type Reciever interface {
	Tasks() <-chan Task

	Close()
}
