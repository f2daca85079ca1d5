package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkzt/ytsubs/app/database"
)

// Backfiller ingests a channel's full upload history through the paginated
// Data API. Progress is persisted per channel as a continuation token, so a
// backfill interrupted by errors or restarts resumes where it left off.
type Backfiller struct {
	api      UploadsAPI
	channels database.ChannelRepository
	videos   database.VideoRepository
}

// NewBackfiller creates a backfiller over the given upstream and stores
func NewBackfiller(api UploadsAPI, channels database.ChannelRepository, videos database.VideoRepository) *Backfiller {
	return &Backfiller{
		api:      api,
		channels: channels,
		videos:   videos,
	}
}

// Run backfills every active channel that is not fully loaded yet. One
// channel's failure is logged and does not block its siblings.
func (b *Backfiller) Run(ctx context.Context) error {
	channels, err := b.channels.ListPendingBackfill()
	if err != nil {
		return fmt.Errorf("failed to list channels pending backfill: %w", err)
	}

	for _, ch := range channels {
		if err := b.RunChannel(ctx, ch); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Channel backfill failed", "channel", ch.ID, "name", ch.Name, "error", err)
		}
	}

	return nil
}

// RunChannel ingests pages for one channel until its history is exhausted.
// The cursor is persisted after every page, so an error mid-way loses at
// most the current page.
func (b *Backfiller) RunChannel(ctx context.Context, ch database.Channel) error {
	if ch.FullyLoaded || !ch.Active() {
		return nil
	}
	if ch.UploadsID == "" {
		slog.Warn("Channel has no uploads playlist, skipping backfill", "channel", ch.ID, "name", ch.Name)
		return nil
	}

	cursor := ""
	if ch.NextPageToken != nil {
		cursor = *ch.NextPageToken
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		next, done, err := b.processPage(ctx, ch, cursor)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		cursor = next
	}
}

// processPage fetches and stores a single page. It returns done=true once
// the channel has been marked fully backfilled.
func (b *Backfiller) processPage(ctx context.Context, ch database.Channel, cursor string) (string, bool, error) {
	page, err := b.api.GetUploadsPage(ctx, ch.UploadsID, cursor)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch uploads page: %w", err)
	}

	if len(page.Items) == 0 {
		if err := b.channels.MarkFullyBackfilled(ch.ID); err != nil {
			return "", false, err
		}
		slog.Info("Channel fully backfilled", "channel", ch.ID, "name", ch.Name)
		return "", true, nil
	}

	now := time.Now().UTC()
	newCount := 0
	skippedShorts := 0

	for _, item := range page.Items {
		if IsShort(item.Title) {
			skippedShorts++
			continue
		}

		inserted, err := b.videos.UpsertVideo(VideoFromAPIItem(ch.ID, item, now))
		if err != nil {
			return "", false, fmt.Errorf("failed to store video %s: %w", item.VideoID, err)
		}
		if inserted {
			newCount++
		}
	}

	slog.Info("Backfill page processed",
		"channel", ch.ID,
		"name", ch.Name,
		"items", len(page.Items),
		"new", newCount,
		"shorts_skipped", skippedShorts)

	// No continuation token means this was the final page.
	if page.NextPageToken == "" {
		if err := b.channels.MarkFullyBackfilled(ch.ID); err != nil {
			return "", false, err
		}
		slog.Info("Channel fully backfilled", "channel", ch.ID, "name", ch.Name)
		return "", true, nil
	}

	if err := b.channels.UpdateCursor(ch.ID, page.NextPageToken); err != nil {
		return "", false, err
	}

	return page.NextPageToken, false, nil
}
