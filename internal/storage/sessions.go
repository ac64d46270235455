package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/schoolpay/internal/model"
)

// LoadSession returns the stored session, or nil when none is saved. A
// session whose user cannot be decoded is cleared and reported as absent.
func (s *SQLiteStorage) LoadSession(ctx context.Context) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		session   model.Session
		userJSON  sql.NullString
		expiresAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_json, created_at, expires_at FROM sessions WHERE id = 1`,
	).Scan(&session.Token, &userJSON, &session.CreatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if expiresAt.Valid {
		session.ExpiresAt = expiresAt.Time
	}
	if userJSON.Valid && userJSON.String != "" {
		var user model.User
		if err := json.Unmarshal([]byte(userJSON.String), &user); err != nil {
			slog.Warn("Discarding session with unreadable user", "error", err)
			if clearErr := s.ClearSession(ctx); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		session.User = &user
	}
	return &session, nil
}

// SaveSession replaces the stored session.
func (s *SQLiteStorage) SaveSession(ctx context.Context, session *model.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if err := validateString(session.Token, "token"); err != nil {
		return err
	}

	var userJSON sql.NullString
	if session.User != nil {
		data, err := json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		userJSON = sql.NullString{String: string(data), Valid: true}
	}
	expiresAt := sql.NullTime{Time: session.ExpiresAt, Valid: !session.ExpiresAt.IsZero()}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, user_json, created_at, expires_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		session.Token, userJSON, session.CreatedAt.UTC(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearSession removes the stored session. Clearing an empty store is not an error.
func (s *SQLiteStorage) ClearSession(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
