package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/pkg/logger"
)

// Worker consumes snapshot jobs from asynq. Snapshots write one file each,
// so the worker handles them one at a time.
type Worker struct {
	server    *asynq.Server
	processor func(context.Context, *SnapshotTask) error
	started   bool
	mu        sync.Mutex
}

// NewWorker returns nil when redis is disabled.
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	log := logger.Component("worker")
	server := asynq.NewServer(redisClientOpt(cfg), asynq.Config{
		Concurrency:     1,
		Queues:          map[string]int{QueueSnapshots: 1},
		ShutdownTimeout: 30 * time.Second,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Error().Err(err).Str("type", task.Type()).Int("retry", retried).Int("max_retry", maxRetry).Msg("task failed")
		}),
	})

	return &Worker{server: server}
}

func (w *Worker) SetProcessor(processor func(context.Context, *SnapshotTask) error) {
	w.processor = processor
}

// Start begins polling redis in the background.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return nil
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSnapshot, w.handleSnapshotTask)
	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	w.started = true
	logger.Infof("[Worker] Consuming %s from queue %q", TaskTypeSnapshot, QueueSnapshots)
	return nil
}

// Stop waits for the running snapshot, if any, to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.server.Shutdown()
	w.started = false
	logger.Infof("[Worker] Shutdown complete")
}

func (w *Worker) handleSnapshotTask(ctx context.Context, t *asynq.Task) error {
	var task SnapshotTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		// a payload that does not decode will never decode
		return fmt.Errorf("decode snapshot task: %v: %w", err, asynq.SkipRetry)
	}
	if w.processor == nil {
		return fmt.Errorf("no snapshot processor: %w", asynq.SkipRetry)
	}

	logger.Info().Str("reason", task.Reason).Str("requested_by", task.RequestedBy).Msg("[Worker] Writing snapshot")
	return w.processor(ctx, &task)
}
