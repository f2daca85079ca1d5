package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/youtube"
)

const shortsMarker = "#shorts"

// IsShort reports whether a title marks a short-form video. Shorts are
// excluded at ingestion time and never stored.
func IsShort(title string) bool {
	return strings.Contains(strings.ToLower(title), shortsMarker)
}

func watchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// VideoFromAPIItem maps one uploads-playlist item to a video record
func VideoFromAPIItem(channelID string, item youtube.VideoItem, now time.Time) database.Video {
	return database.Video{
		ID:           item.VideoID,
		ChannelID:    channelID,
		Title:        item.Title,
		URL:          watchURL(item.VideoID),
		ThumbnailURL: item.ThumbnailURL,
		Author:       item.ChannelTitle,
		Description:  item.Description,
		PublishedAt:  item.PublishedAt,
		DiscoveredAt: now,
	}
}

// VideoFromFeedEntry maps one Atom feed entry to a video record. The feed
// has no thumbnail, so one is synthesized from the video ID.
func VideoFromFeedEntry(channelID string, entry youtube.FeedEntry, now time.Time) database.Video {
	link := entry.Link
	if link == "" {
		link = watchURL(entry.VideoID)
	}

	return database.Video{
		ID:           entry.VideoID,
		ChannelID:    channelID,
		Title:        entry.Title,
		URL:          link,
		ThumbnailURL: youtube.ThumbnailURL(entry.VideoID),
		Author:       entry.Author,
		PublishedAt:  entry.PublishedAt,
		DiscoveredAt: now,
	}
}
