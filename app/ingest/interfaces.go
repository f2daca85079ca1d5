package ingest

import (
	"context"

	"github.com/mkzt/ytsubs/app/youtube"
)

// UploadsAPI is the paginated upstream source used by deep backfill.
type UploadsAPI interface {
	GetUploadsPage(ctx context.Context, playlistID, pageToken string) (*youtube.PlaylistPage, error)
}

// FeedAPI is the lightweight recent-items source used by feed sync.
type FeedAPI interface {
	Fetch(ctx context.Context, channelID string) ([]youtube.FeedEntry, error)
}

var _ UploadsAPI = (*youtube.Client)(nil)
var _ FeedAPI = (*youtube.FeedClient)(nil)
