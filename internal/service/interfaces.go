// Package service defines the interfaces shared between the application layers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/schoolpay/internal/model"
)

// SessionStore persists the authenticated session between invocations.
// LoadSession returns (nil, nil) when nothing is stored.
type SessionStore interface {
	LoadSession(ctx context.Context) (*model.Session, error)
	SaveSession(ctx context.Context, session *model.Session) error
	ClearSession(ctx context.Context) error
}

// PreferenceStore persists user preferences such as the display theme.
type PreferenceStore interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// SnapshotStore caches the last result set fetched for a query.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, key string, transactions []model.Transaction) error
	LoadSnapshot(ctx context.Context, key string) ([]model.Transaction, time.Time, error)
	LatestSnapshot(ctx context.Context) (string, []model.Transaction, error)
}

// TransactionSource fetches pages of transactions from the payments API.
type TransactionSource interface {
	ListTransactions(ctx context.Context, params model.ListParams) (*model.TransactionPage, error)
	TransactionsBySchool(ctx context.Context, schoolID string, params model.ListParams) (*model.TransactionPage, error)
}

// TableWriter receives an exported table: a header row followed by data rows.
type TableWriter interface {
	WriteTable(ctx context.Context, header []string, rows [][]string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
