package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkzt/ytsubs/app/database"
)

// FeedSyncer pulls the most recent uploads of every active channel from the
// public Atom feed. It runs opportunistically on listing reads, so freshly
// published videos show up without waiting for the daily sweep. It shares
// the insert-or-ignore contract with the backfiller.
type FeedSyncer struct {
	feed     FeedAPI
	channels database.ChannelRepository
	videos   database.VideoRepository
}

// NewFeedSyncer creates a feed syncer over the given upstream and stores
func NewFeedSyncer(feed FeedAPI, channels database.ChannelRepository, videos database.VideoRepository) *FeedSyncer {
	return &FeedSyncer{
		feed:     feed,
		channels: channels,
		videos:   videos,
	}
}

// Run syncs all active channels. Individual channel failures are swallowed
// so a broken feed never fails the read that triggered the sync.
func (s *FeedSyncer) Run(ctx context.Context) error {
	channels, err := s.channels.ListChannels(false)
	if err != nil {
		return fmt.Errorf("failed to list active channels: %w", err)
	}

	for _, ch := range channels {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.syncChannel(ctx, ch); err != nil {
			slog.Warn("Feed sync failed", "channel", ch.ID, "name", ch.Name, "error", err)
		}
	}

	return nil
}

func (s *FeedSyncer) syncChannel(ctx context.Context, ch database.Channel) error {
	entries, err := s.feed.Fetch(ctx, ch.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	newCount := 0

	for _, entry := range entries {
		if IsShort(entry.Title) {
			continue
		}

		inserted, err := s.videos.UpsertVideo(VideoFromFeedEntry(ch.ID, entry, now))
		if err != nil {
			return err
		}
		if inserted {
			newCount++
		}
	}

	if newCount > 0 {
		slog.Info("Feed sync discovered new videos", "channel", ch.ID, "name", ch.Name, "new", newCount)
	}

	return nil
}
