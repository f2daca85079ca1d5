package tasks

import (
	"context"

	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/ingest"
)

// TaskSchedulerInterface defines the interface for task scheduling
// operations. The API layer uses it to enqueue a backfill when a new channel
// is registered; the scheduler itself enqueues the daily sweep tasks.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// BackfillRunner runs the resumable deep backfill for one channel.
type BackfillRunner interface {
	RunChannel(ctx context.Context, ch database.Channel) error
}

var _ BackfillRunner = (*ingest.Backfiller)(nil)
