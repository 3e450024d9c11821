package services

import (
	"github.com/huangang/portfolio/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic snapshot and log cleanup jobs.
type Scheduler struct {
	cron  *cron.Cron
	queue TaskQueue
	logs  *SystemLogService
}

func NewScheduler(queue TaskQueue, logs *SystemLogService) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		queue: queue,
		logs:  logs,
	}
}

// ScheduleSnapshots enqueues a snapshot on every tick of spec. An empty spec
// disables scheduled snapshots.
func (s *Scheduler) ScheduleSnapshots(spec string) error {
	if spec == "" {
		logger.Infof("[Scheduler] Scheduled snapshots disabled")
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.queue.Enqueue(&SnapshotTask{Reason: "schedule"}); err != nil {
			logger.Errorf("[Scheduler] Failed to enqueue snapshot: %v", err)
		}
	})
	if err != nil {
		return err
	}
	logger.Infof("[Scheduler] Snapshots scheduled: %s", spec)
	return nil
}

// ScheduleLogCleanup drops audit logs older than retentionDays once a day.
func (s *Scheduler) ScheduleLogCleanup(retentionDays int) error {
	if s.logs == nil || retentionDays <= 0 {
		logger.Infof("[Scheduler] Log cleanup disabled (retention_days <= 0)")
		return nil
	}
	_, err := s.cron.AddFunc("@daily", func() {
		runLogCleanup(s.logs, retentionDays)
	})
	if err != nil {
		return err
	}
	runLogCleanup(s.logs, retentionDays)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func runLogCleanup(logs *SystemLogService, retentionDays int) {
	deleted, err := logs.CleanupOldLogs(retentionDays)
	if err != nil {
		logger.Errorf("[SystemLog] Failed to cleanup old logs: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("[SystemLog] Cleaned up %d logs older than %d days", deleted, retentionDays)
	}
}
