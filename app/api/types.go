package api

import (
	"context"
	"time"

	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/ingest"
	"github.com/mkzt/ytsubs/app/registry"
)

// FeedSyncRunner runs the request-triggered recent-feed sync.
type FeedSyncRunner interface {
	Run(ctx context.Context) error
}

var _ FeedSyncRunner = (*ingest.FeedSyncer)(nil)

type Handler struct {
	registry *registry.Registry
	syncer   FeedSyncRunner
	channels database.ChannelRepository
	videos   database.VideoRepository
	watched  database.WatchRepository
	settings database.SettingsRepository
}

type registerChannelRequest struct {
	URL   string `json:"url" binding:"required"`
	Group string `json:"group"`
}

type updateChannelRequest struct {
	Group string `json:"group"`
}

type pinRequest struct {
	VideoID  string `json:"videoId" binding:"required"`
	IsPinned bool   `json:"isPinned"`
}

type watchedRequest struct {
	VideoID string `json:"videoId" binding:"required"`
	Watched bool   `json:"watched"`
}

type historyRecord struct {
	TitleURL string `json:"titleUrl"`
}

type excludeKeywordsRequest struct {
	Keywords string `json:"keywords"`
}

type channelResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	GroupName   string     `json:"groupName"`
	FullyLoaded bool       `json:"fullyLoaded"`
	ArchivedAt  *time.Time `json:"archivedAt,omitempty"`
}

type videoResponse struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channelId"`
	ChannelName  string    `json:"channelName"`
	GroupName    string    `json:"groupName"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Author       string    `json:"author"`
	Description  string    `json:"description"`
	PublishedAt  time.Time `json:"publishedAt"`
	IsWatched    bool      `json:"isWatched"`
	IsPinned     bool      `json:"isPinned"`
}
