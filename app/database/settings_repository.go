package database

import (
	"database/sql"
	"fmt"
)

// Setting keys used by the application.
const (
	SettingExcludeKeywords = "exclude_keywords"
)

var _ SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo handles the process-wide key/value settings table
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the value for a key, or the empty string when unset
func (r *SettingsRepo) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	return value, nil
}

// Set stores the value for a key, overwriting any previous value
func (r *SettingsRepo) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)

	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	return nil
}
