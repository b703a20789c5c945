package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medication_reminder/internal/domain/settings"
)

// SettingsStore is a settings.KV backed by the device_settings table.
type SettingsStore struct {
	db *DB
}

func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

var _ settings.KV = (*SettingsStore)(nil)

func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	query := s.db.rebind(`SELECT value FROM device_settings WHERE key = ?`)
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", settings.ErrNotFound
		}
		return "", fmt.Errorf("error getting setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	query := s.db.rebind(`INSERT INTO device_settings (key, value, updated_at)
               VALUES (?, ?, CURRENT_TIMESTAMP)
               ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("error setting %q: %w", key, err)
	}
	return nil
}
