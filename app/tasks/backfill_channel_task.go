package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkzt/ytsubs/app/database"
)

type BackfillChannelTask struct {
	Task
	channels   database.ChannelRepository
	backfiller BackfillRunner
}

func NewBackfillChannelTask(channelID string, channels database.ChannelRepository, backfiller BackfillRunner) *BackfillChannelTask {
	return &BackfillChannelTask{
		Task:       NewTask(TaskTypeBackfillChannel, channelID),
		channels:   channels,
		backfiller: backfiller,
	}
}

func (t *BackfillChannelTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ch, err := t.channels.GetChannel(t.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to load channel: %w", err)
	}
	if ch == nil {
		slog.Debug("Channel no longer exists, skipping backfill", "channel", t.ChannelID)
		return nil
	}
	if ch.FullyLoaded || !ch.Active() {
		slog.Debug("Channel not eligible for backfill, skipping", "channel", t.ChannelID)
		return nil
	}

	if err := t.backfiller.RunChannel(ctx, *ch); err != nil {
		return fmt.Errorf("failed to backfill channel: %w", err)
	}

	slog.Info("Task completed",
		"type", "BackfillChannel",
		"channel", t.ChannelID,
		"duration", t.GetDuration())

	return nil
}
