package database

import (
	"time"
)

type ChannelRepository interface {
	GetChannel(id string) (*Channel, error)
	ListChannels(archived bool) ([]Channel, error)
	ListPendingBackfill() ([]Channel, error)
	GetChannelCount() (int, error)

	UpsertChannel(ch Channel) error
	ArchiveChannel(id string) error
	RestoreChannel(id string, groupName string) error
	UpdateGroups(id string, groupName string) error

	UpdateCursor(id string, nextPageToken string) error
	MarkFullyBackfilled(id string) error

	PurgeArchivedBefore(cutoff time.Time) (int64, error)
}

type VideoRepository interface {
	UpsertVideo(v Video) (bool, error)
	ListActiveVideos() ([]VideoWithState, error)
	SetPinned(videoID string, pinned bool) error
	DeleteOrphanVideos() (int64, error)
	GetVideoCount() (int, error)
}

type WatchRepository interface {
	SetWatched(videoID string, watched bool) error
	ImportWatched(videoIDs []string) (int, error)
}

type SettingsRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
}
