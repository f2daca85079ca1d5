package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkzt/ytsubs/app/cfg"
	"github.com/mkzt/ytsubs/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs the daily sweep: a retention purge plus a resumable
// backfill for every channel whose history is not fully loaded yet. Tasks
// are executed by a small worker pool and retried with bounded backoff.
type Scheduler struct {
	channels    database.ChannelRepository
	videos      database.VideoRepository
	backfiller  BackfillRunner
	retention   time.Duration
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(channels database.ChannelRepository, videos database.VideoRepository,
	backfiller BackfillRunner) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		channels:    channels,
		videos:      videos,
		backfiller:  backfiller,
		retention:   time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:    time.Duration(cfg.SweepInterval) * time.Hour,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueSweepTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueSweepTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueSweepTasks() {
	purgeTask := NewPurgeArchivedTask(s.channels, s.videos, s.retention)
	if err := s.EnqueueTask(purgeTask); err != nil {
		slog.Warn("Failed to enqueue PurgeArchivedTask", "error", err)
	}

	pending, err := s.channels.ListPendingBackfill()
	if err != nil {
		slog.Warn("Failed to list channels pending backfill", "error", err)
		return
	}
	if len(pending) == 0 {
		slog.Debug("No channels pending backfill")
		return
	}

	slog.Debug("Enqueueing backfill tasks", "count", len(pending))

	for _, ch := range pending {
		backfillTask := NewBackfillChannelTask(ch.ID, s.channels, s.backfiller)
		if err := s.EnqueueTask(backfillTask); err != nil {
			slog.Warn("Failed to enqueue BackfillChannelTask", "channel", ch.ID, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "channel", task.GetChannelID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
