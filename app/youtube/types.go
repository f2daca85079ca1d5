package youtube

import (
	"time"
)

// ChannelInfo is the channel metadata resolved during registration.
type ChannelInfo struct {
	ID                string
	Title             string
	UploadsPlaylistID string
}

// VideoItem is one entry of an uploads-playlist page from the Data API.
type VideoItem struct {
	VideoID      string
	Title        string
	Description  string
	ChannelTitle string
	ThumbnailURL string
	PublishedAt  time.Time
}

// PlaylistPage is a single page of a channel's uploads playlist. An empty
// NextPageToken means the playlist is exhausted.
type PlaylistPage struct {
	Items         []VideoItem
	NextPageToken string
}

// FeedEntry is one entry of a channel's public Atom feed. The feed carries
// no thumbnail metadata; use ThumbnailURL to synthesize one.
type FeedEntry struct {
	VideoID     string
	Title       string
	Author      string
	Link        string
	PublishedAt time.Time
}
