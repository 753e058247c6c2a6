package store

import (
	"context"
	"database/sql"

	"storefront/internal/models"
)

// GetSetting retrieves a single setting value by key
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllSettings retrieves every setting as a key/value map
func (s *Store) GetAllSettings(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM settings"); err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// UpsertSetting inserts or overwrites a setting value
func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		key, value)
	return err
}

// EnsureSettings inserts the given defaults for keys that do not exist yet.
// Existing values are never overwritten, so it is safe to call on every boot.
func (s *Store) EnsureSettings(ctx context.Context, defaults map[string]string) error {
	for key, value := range defaults {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING",
			key, value)
		if err != nil {
			return err
		}
	}
	return nil
}
