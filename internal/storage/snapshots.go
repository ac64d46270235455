package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/schoolpay/internal/model"
)

// SaveSnapshot caches the result set fetched for a query key.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, key string, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}

	payload, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, `
			INSERT INTO transaction_snapshots (query_key, payload, row_count, fetched_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(query_key) DO UPDATE SET
				payload = excluded.payload,
				row_count = excluded.row_count,
				fetched_at = excluded.fetched_at`,
			key, string(payload), len(transactions), time.Now().UTC())
		if execErr != nil {
			return fmt.Errorf("failed to save snapshot: %w", execErr)
		}
		return nil
	})
}

// LoadSnapshot returns the cached result set for key and when it was fetched.
// It returns ErrNotFound when nothing is cached under key.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context, key string) ([]model.Transaction, time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, time.Time{}, err
	}

	var (
		payload   string
		fetchedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM transaction_snapshots WHERE query_key = ?`, key,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("snapshot %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	rows, err := decodeSnapshot(payload)
	if err != nil {
		return nil, time.Time{}, err
	}
	return rows, fetchedAt, nil
}

// LatestSnapshot returns the most recently fetched result set and its key.
func (s *SQLiteStorage) LatestSnapshot(ctx context.Context) (string, []model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return "", nil, err
	}

	var key, payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT query_key, payload FROM transaction_snapshots
		ORDER BY fetched_at DESC, rowid DESC LIMIT 1`,
	).Scan(&key, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("latest snapshot: %w", ErrNotFound)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	rows, err := decodeSnapshot(payload)
	if err != nil {
		return "", nil, err
	}
	return key, rows, nil
}

// PruneSnapshots deletes snapshots fetched before cutoff and returns how many
// were removed.
func (s *SQLiteStorage) PruneSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM transaction_snapshots WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned snapshots: %w", err)
	}
	return n, nil
}

func decodeSnapshot(payload string) ([]model.Transaction, error) {
	var rows []model.Transaction
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return rows, nil
}
