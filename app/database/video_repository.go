package database

import (
	"fmt"
)

var _ VideoRepository = (*VideoRepo)(nil)

// VideoRepo handles database operations for discovered videos
type VideoRepo struct {
	db *DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *DB) *VideoRepo {
	return &VideoRepo{db: db}
}

// UpsertVideo stores a discovered video with insert-or-ignore semantics.
// A conflicting ID is a no-op, so re-ingestion never clobbers the user's
// pinned flag. Returns true when a new row was inserted.
func (r *VideoRepo) UpsertVideo(v Video) (bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO videos (id, channel_id, title, url, thumbnail_url, author, description, published_at, discovered_at, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT (id) DO NOTHING
	`, v.ID, v.ChannelID, v.Title, v.URL, v.ThumbnailURL, v.Author, v.Description,
		v.PublishedAt, v.DiscoveredAt)

	if err != nil {
		return false, fmt.Errorf("failed to upsert video: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check video insert: %w", err)
	}

	return inserted > 0, nil
}

// ListActiveVideos returns every video belonging to an active channel,
// joined with group labels and the watched flag, newest first
func (r *VideoRepo) ListActiveVideos() ([]VideoWithState, error) {
	rows, err := r.db.Query(`
		SELECT v.id, v.channel_id, v.title, v.url,
		       COALESCE(v.thumbnail_url, ''), COALESCE(v.author, ''), COALESCE(v.description, ''),
		       v.published_at, v.discovered_at, v.pinned,
		       c.name, COALESCE(c.group_name, ''),
		       w.video_id IS NOT NULL
		FROM videos v
		JOIN channels c ON v.channel_id = c.id
		LEFT JOIN watched w ON w.video_id = v.id
		WHERE c.archived_at IS NULL
		ORDER BY v.published_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []VideoWithState
	for rows.Next() {
		var v VideoWithState
		err := rows.Scan(
			&v.ID, &v.ChannelID, &v.Title, &v.URL,
			&v.ThumbnailURL, &v.Author, &v.Description,
			&v.PublishedAt, &v.DiscoveredAt, &v.Pinned,
			&v.ChannelName, &v.GroupName,
			&v.Watched,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video rows: %w", err)
	}

	return videos, nil
}

// SetPinned toggles the user-set pin flag on a video
func (r *VideoRepo) SetPinned(videoID string, pinned bool) error {
	_, err := r.db.Exec(`
		UPDATE videos
		SET pinned = ?
		WHERE id = ?
	`, pinned, videoID)

	if err != nil {
		return fmt.Errorf("failed to set pinned state: %w", err)
	}

	return nil
}

// DeleteOrphanVideos removes videos whose channel row no longer exists.
// Run after purging archived channels to cascade the cleanup.
func (r *VideoRepo) DeleteOrphanVideos() (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM videos
		WHERE channel_id NOT IN (SELECT id FROM channels)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphan videos: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted videos: %w", err)
	}

	return deleted, nil
}

// GetVideoCount returns the total number of stored videos
func (r *VideoRepo) GetVideoCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get video count: %w", err)
	}
	return count, nil
}
