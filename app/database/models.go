package database

import (
	"time"
)

type Channel struct {
	ID            string // YouTube channel ID (UC...)
	Name          string
	GroupName     string // Comma-separated free-text labels
	UploadsID     string // Uploads playlist ID from the Data API
	NextPageToken *string
	FullyLoaded   bool
	ArchivedAt    *time.Time // nil while the channel is active
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether the channel is eligible for ingestion and queries.
func (c *Channel) Active() bool {
	return c.ArchivedAt == nil
}

type Video struct {
	ID           string // YouTube video ID, primary key
	ChannelID    string
	Title        string
	URL          string
	ThumbnailURL string
	Author       string
	Description  string
	PublishedAt  time.Time
	DiscoveredAt time.Time
	Pinned       bool
}

// VideoWithState is a video joined with its channel's group labels and the
// viewer's watched flag, as returned by the listing query.
type VideoWithState struct {
	Video
	ChannelName string
	GroupName   string
	Watched     bool
}
