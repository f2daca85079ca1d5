package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ChannelRepository = (*ChannelRepo)(nil)

// ChannelRepo handles database operations for subscribed channels
type ChannelRepo struct {
	db *DB
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *DB) *ChannelRepo {
	return &ChannelRepo{db: db}
}

const channelColumns = `id, name, COALESCE(group_name, ''), COALESCE(uploads_id, ''),
       next_page_token, fully_loaded, archived_at, created_at, updated_at`

func scanChannel(row interface{ Scan(...any) error }) (*Channel, error) {
	var ch Channel
	err := row.Scan(
		&ch.ID, &ch.Name, &ch.GroupName, &ch.UploadsID,
		&ch.NextPageToken, &ch.FullyLoaded, &ch.ArchivedAt,
		&ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetChannel retrieves a channel by its ID, returning nil when absent
func (r *ChannelRepo) GetChannel(id string) (*Channel, error) {
	ch, err := scanChannel(r.db.QueryRow(`
		SELECT `+channelColumns+`
		FROM channels
		WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return ch, nil
}

// ListChannels returns all active or all archived channels
func (r *ChannelRepo) ListChannels(archived bool) ([]Channel, error) {
	predicate := "archived_at IS NULL"
	if archived {
		predicate = "archived_at IS NOT NULL"
	}

	rows, err := r.db.Query(`
		SELECT ` + channelColumns + `
		FROM channels
		WHERE ` + predicate + `
		ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	return collectChannels(rows)
}

// ListPendingBackfill returns active channels whose upload history has not
// been fully ingested yet
func (r *ChannelRepo) ListPendingBackfill() ([]Channel, error) {
	rows, err := r.db.Query(`
		SELECT ` + channelColumns + `
		FROM channels
		WHERE fully_loaded = 0
		  AND archived_at IS NULL
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels pending backfill: %w", err)
	}
	defer rows.Close()

	return collectChannels(rows)
}

func collectChannels(rows *sql.Rows) ([]Channel, error) {
	var channels []Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, *ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

// GetChannelCount returns the total number of channels
func (r *ChannelRepo) GetChannelCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM channels").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get channel count: %w", err)
	}
	return count, nil
}

// UpsertChannel inserts a channel or refreshes its metadata. Re-registering
// resets the backfill cursor and clears the archived state, matching a fresh
// subscription.
func (r *ChannelRepo) UpsertChannel(ch Channel) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO channels (id, name, group_name, uploads_id, next_page_token, fully_loaded, archived_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, 0, NULL, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			group_name = excluded.group_name,
			uploads_id = excluded.uploads_id,
			next_page_token = NULL,
			fully_loaded = 0,
			archived_at = NULL,
			updated_at = excluded.updated_at
	`, ch.ID, ch.Name, ch.GroupName, ch.UploadsID, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert channel: %w", err)
	}

	return nil
}

// ArchiveChannel soft-deletes a channel. Videos and watched state are untouched.
func (r *ChannelRepo) ArchiveChannel(id string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE channels
		SET archived_at = ?, updated_at = ?
		WHERE id = ?
	`, now, now, id)

	if err != nil {
		return fmt.Errorf("failed to archive channel: %w", err)
	}

	return nil
}

// RestoreChannel clears the archived state and overwrites the group labels
func (r *ChannelRepo) RestoreChannel(id string, groupName string) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET archived_at = NULL, group_name = ?, updated_at = ?
		WHERE id = ?
	`, groupName, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to restore channel: %w", err)
	}

	return nil
}

// UpdateGroups overwrites the comma-separated group label set
func (r *ChannelRepo) UpdateGroups(id string, groupName string) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET group_name = ?, updated_at = ?
		WHERE id = ?
	`, groupName, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update channel groups: %w", err)
	}

	return nil
}

// UpdateCursor persists the continuation token for the next backfill page
func (r *ChannelRepo) UpdateCursor(id string, nextPageToken string) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET next_page_token = ?, updated_at = ?
		WHERE id = ?
	`, nextPageToken, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update backfill cursor: %w", err)
	}

	return nil
}

// MarkFullyBackfilled records that the channel's upload history is exhausted
// and clears the cursor
func (r *ChannelRepo) MarkFullyBackfilled(id string) error {
	_, err := r.db.Exec(`
		UPDATE channels
		SET fully_loaded = 1, next_page_token = NULL, updated_at = ?
		WHERE id = ?
	`, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to mark channel fully backfilled: %w", err)
	}

	return nil
}

// PurgeArchivedBefore hard-deletes channels archived before the cutoff and
// returns the number of deleted rows
func (r *ChannelRepo) PurgeArchivedBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM channels
		WHERE archived_at IS NOT NULL
		  AND archived_at < ?
	`, cutoff)

	if err != nil {
		return 0, fmt.Errorf("failed to purge archived channels: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged channels: %w", err)
	}

	return deleted, nil
}
