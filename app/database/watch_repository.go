package database

import (
	"fmt"
)

var _ WatchRepository = (*WatchRepo)(nil)

// WatchRepo handles the set of watched video IDs. Membership is independent
// of the videos table: history imports may mark IDs that are not ingested yet.
type WatchRepo struct {
	db *DB
}

// NewWatchRepository creates a new watch state repository
func NewWatchRepository(db *DB) *WatchRepo {
	return &WatchRepo{db: db}
}

// SetWatched marks or unmarks a single video as watched
func (r *WatchRepo) SetWatched(videoID string, watched bool) error {
	var err error
	if watched {
		_, err = r.db.Exec(`
			INSERT INTO watched (video_id) VALUES (?)
			ON CONFLICT (video_id) DO NOTHING
		`, videoID)
	} else {
		_, err = r.db.Exec(`DELETE FROM watched WHERE video_id = ?`, videoID)
	}

	if err != nil {
		return fmt.Errorf("failed to set watched state: %w", err)
	}

	return nil
}

// ImportWatched marks a batch of video IDs as watched in a single
// transaction and returns the number of newly inserted entries
func (r *WatchRepo) ImportWatched(videoIDs []string) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO watched (video_id) VALUES (?)
		ON CONFLICT (video_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import statement: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for _, id := range videoIDs {
		res, err := stmt.Exec(id)
		if err != nil {
			return 0, fmt.Errorf("failed to import watched id %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	return imported, nil
}
