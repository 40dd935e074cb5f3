package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tapedeck/internal/shared"
)

// Preference is one persisted key/value record.
type Preference struct {
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PreferenceRepository persists opaque string values under fixed keys in the preferences table.
//
// It backs the player's settings record and satisfies [player.Store].
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the value stored under key. The boolean is false when no record exists.
func (r *PreferenceRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query preference %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (r *PreferenceRepository) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: preference key must not be empty", shared.ErrInvalidInput)
	}

	now := time.Now()
	query := `
		INSERT INTO preferences (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, now, now); err != nil {
		return fmt.Errorf("failed to store preference %s: %w", key, err)
	}
	return nil
}

// Remove deletes the record stored under key. Removing a missing key is not an error.
func (r *PreferenceRepository) Remove(key string) error {
	if _, err := r.db.Exec("DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// Find returns the full record stored under key, or [shared.ErrKeyNotFound].
func (r *PreferenceRepository) Find(key string) (*Preference, error) {
	query := `
		SELECT key, value, created_at, updated_at
		FROM preferences
		WHERE key = ?
	`

	var p Preference
	err := r.db.QueryRow(query, key).Scan(&p.Key, &p.Value, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference %s: %w", key, err)
	}
	return &p, nil
}
