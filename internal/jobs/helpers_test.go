package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
)

type memoryKV struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryKV() *memoryKV {
	return &memoryKV{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (kv *memoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.entries[key]
	return v, ok, nil
}

func (kv *memoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.entries[key] = value
	kv.ttls[key] = ttl
	return nil
}

type stubRunner struct {
	mu     sync.Mutex
	calls  int
	result *evaluation.Result
	err    error
	gate   chan struct{}
}

func (r *stubRunner) Run(ctx context.Context, symbol string, limit, batchSize int, includePartials bool) (*evaluation.Result, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.result != nil {
		return r.result, nil
	}
	return &evaluation.Result{
		Symbol:     symbol,
		Stats:      evaluation.Stats{TotalSamples: limit},
		Evaluation: json.RawMessage(`{"overall_score":5}`),
	}, nil
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type dispatchFunc func(ctx context.Context, trigger Trigger) error

func (f dispatchFunc) Dispatch(ctx context.Context, trigger Trigger) error {
	return f(ctx, trigger)
}
