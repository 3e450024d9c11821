package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/pkg/logger"
)

const (
	TaskTypeSnapshot = "backup:snapshot"
	QueueSnapshots   = "snapshots"
)

// SnapshotTask asks a worker to write a backup snapshot file.
type SnapshotTask struct {
	Reason      string `json:"reason"` // manual, schedule
	RequestedBy string `json:"requested_by,omitempty"`
}

// TaskQueue accepts snapshot jobs.
type TaskQueue interface {
	Enqueue(task *SnapshotTask) error
	// IsAsync reports whether jobs run in a separate worker process.
	IsAsync() bool
	Close() error
}

var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue picks the asynq queue when redis is enabled and reachable,
// the in-process queue otherwise.
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		globalTaskQueue = NewTaskQueue(cfg)
	})
	return globalTaskQueue
}

func NewTaskQueue(cfg *config.Config) TaskQueue {
	if !cfg.Redis.Enabled {
		logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
		return NewSyncQueue()
	}
	queue, err := NewAsyncQueue(&cfg.Redis)
	if err != nil {
		logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
		return NewSyncQueue()
	}
	logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
	return queue
}

func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue hands snapshot jobs to asynq.
type AsyncQueue struct {
	client *asynq.Client
}

func redisClientOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewAsyncQueue connects to redis and fails when it cannot be reached.
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := redisClientOpt(cfg)
	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *SnapshotTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	// Unique drops an identical request while one is still pending
	info, err := q.client.Enqueue(asynq.NewTask(TaskTypeSnapshot, payload),
		asynq.Queue(QueueSnapshots),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(time.Minute),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		logger.Infof("[AsyncQueue] Snapshot already pending, request from %q dropped", task.RequestedBy)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Task enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue runs jobs on a goroutine of this process.
type SyncQueue struct {
	processor func(context.Context, *SnapshotTask) error
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

func (q *SyncQueue) SetProcessor(processor func(context.Context, *SnapshotTask) error) {
	q.processor = processor
}

func (q *SyncQueue) Enqueue(task *SnapshotTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] No processor set, task will be dropped")
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.processor(context.Background(), task); err != nil {
			logger.Errorf("[SyncQueue] Task processing failed: %v", err)
		}
	}()
	return nil
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close waits for running jobs.
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}

// SnapshotProcessor adapts BackupService to the queue processor signature.
func SnapshotProcessor(backup *BackupService) func(context.Context, *SnapshotTask) error {
	return func(ctx context.Context, task *SnapshotTask) error {
		path, err := backup.WriteSnapshot(ctx)
		if err != nil {
			return err
		}
		logger.Infof("[Backup] %s snapshot stored at %s", task.Reason, path)
		return nil
	}
}
