package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkzt/ytsubs/app/database"
)

// PurgeArchivedTask hard-deletes channels whose archive timestamp is older
// than the retention window, then cascades the cleanup to videos that no
// longer belong to any channel. Watched entries are left in place.
type PurgeArchivedTask struct {
	Task
	channels  database.ChannelRepository
	videos    database.VideoRepository
	retention time.Duration
}

func NewPurgeArchivedTask(channels database.ChannelRepository, videos database.VideoRepository, retention time.Duration) *PurgeArchivedTask {
	return &PurgeArchivedTask{
		Task:      NewTask(TaskTypePurgeArchived, ""),
		channels:  channels,
		videos:    videos,
		retention: retention,
	}
}

func (t *PurgeArchivedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cutoff := time.Now().UTC().Add(-t.retention)

	purged, err := t.channels.PurgeArchivedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge archived channels: %w", err)
	}

	var orphans int64
	if purged > 0 {
		orphans, err = t.videos.DeleteOrphanVideos()
		if err != nil {
			return fmt.Errorf("failed to delete orphan videos: %w", err)
		}
	}

	slog.Info("Task completed",
		"type", "PurgeArchived",
		"duration", t.GetDuration(),
		"channels_purged", purged,
		"videos_deleted", orphans)

	return nil
}
