package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Preference keys.
const (
	PrefDarkMode = "dark_mode"
)

// GetPreference returns the stored value for key. The boolean is false when
// the key was never set.
func (s *SQLiteStorage) GetPreference(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	if err := validateString(key, "key"); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %q: %w", key, err)
	}
	return value, true, nil
}

// SetPreference stores value under key, replacing any previous value.
func (s *SQLiteStorage) SetPreference(ctx context.Context, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %q: %w", key, err)
	}
	return nil
}

// DarkMode reports whether the dark theme is selected. Unset means light.
func (s *SQLiteStorage) DarkMode(ctx context.Context) (bool, error) {
	value, ok, err := s.GetPreference(ctx, PrefDarkMode)
	if err != nil || !ok {
		return false, err
	}
	// A garbled flag falls back to light.
	dark, parseErr := strconv.ParseBool(value)
	return parseErr == nil && dark, nil
}

// SetDarkMode persists the theme choice.
func (s *SQLiteStorage) SetDarkMode(ctx context.Context, dark bool) error {
	return s.SetPreference(ctx, PrefDarkMode, strconv.FormatBool(dark))
}
