package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/service"
)

var (
	_ service.SessionStore    = (*SQLiteStorage)(nil)
	_ service.PreferenceStore = (*SQLiteStorage)(nil)
	_ service.SnapshotStore   = (*SQLiteStorage)(nil)
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()

	store, err := NewSQLiteStorage(MemoryPath)
	require.NoError(t, err)

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func createTestTransactions(count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	for i := range txns {
		txns[i] = model.Transaction{
			CollectID:         fmt.Sprintf("col-%d", i),
			CustomOrderID:     fmt.Sprintf("ORD-%03d", i),
			SchoolID:          "school-1",
			Gateway:           "razorpay",
			Status:            model.StatusSuccess,
			TransactionAmount: decimal.NewNullDecimal(decimal.NewFromInt(int64(100 * (i + 1)))),
			Date:              model.NewTimestamp(time.Date(2024, 3, i+1, 10, 0, 0, 0, time.UTC)),
			Customer:          &model.Customer{Name: "Parent", Email: "parent@example.com"},
		}
	}
	return txns
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates parent directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "schoolpay.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, dbPath, store.Path())
		assert.FileExists(t, dbPath)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestSQLiteStorage_Migrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store1, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Migrate(ctx))
	version, err := store1.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
	_ = store1.Close()

	// Running migrations again must be a no-op.
	store2, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store2.Close() }()
	require.NoError(t, store2.Migrate(ctx))

	require.NoError(t, store2.SetDarkMode(ctx, true), "database not functional after migration")
}

func TestSQLiteStorage_Session(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty store loads no session")

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := &model.Session{
		Token:     "tok-1",
		CreatedAt: created,
		ExpiresAt: created.Add(time.Hour),
		User:      &model.User{ID: "u1", Name: "Admin", Email: "admin@school.test", SchoolID: "school-1"},
	}
	require.NoError(t, store.SaveSession(ctx, session))

	got, err = store.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok-1", got.Token)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
	require.NotNil(t, got.User)
	assert.Equal(t, *session.User, *got.User)

	// Saving again replaces the single row.
	require.NoError(t, store.SaveSession(ctx, &model.Session{Token: "tok-2", CreatedAt: created}))
	got, err = store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.Token)
	assert.Nil(t, got.User)
	assert.True(t, got.ExpiresAt.IsZero())

	require.NoError(t, store.ClearSession(ctx))
	got, err = store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, store.ClearSession(ctx), "clearing twice is fine")
}

func TestSQLiteStorage_SaveSessionValidation(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	tests := []struct {
		session *model.Session
		wantErr error
		name    string
	}{
		{name: "nil session", session: nil, wantErr: ErrNilParameter},
		{name: "empty token", session: &model.Session{}, wantErr: ErrEmptyString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.SaveSession(ctx, tt.session), tt.wantErr)
		})
	}

	//nolint:staticcheck // exercising the nil context guard
	assert.ErrorIs(t, store.SaveSession(nil, &model.Session{Token: "x"}), ErrNilContext)
}

func TestSQLiteStorage_Preferences(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, ok, err := store.GetPreference(ctx, "page_size")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetPreference(ctx, "page_size", "25"))
	require.NoError(t, store.SetPreference(ctx, "page_size", "50"))
	value, ok, err := store.GetPreference(ctx, "page_size")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "50", value)

	_, _, err = store.GetPreference(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)
	assert.ErrorIs(t, store.SetPreference(ctx, " ", "x"), ErrEmptyString)
}

func TestSQLiteStorage_DarkMode(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	dark, err := store.DarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, dark, "light is the default")

	require.NoError(t, store.SetDarkMode(ctx, true))
	dark, err = store.DarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, dark)

	require.NoError(t, store.SetPreference(ctx, PrefDarkMode, "garbage"))
	dark, err = store.DarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestSQLiteStorage_Snapshots(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, _, err := store.LoadSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = store.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	first := createTestTransactions(3)
	second := createTestTransactions(1)
	second[0].Status = model.StatusFailed
	second[0].TransactionAmount = decimal.NullDecimal{}

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.SaveSnapshot(ctx, "page=1", first))
	require.NoError(t, store.SaveSnapshot(ctx, "page=2", second))

	rows, fetchedAt, err := store.LoadSnapshot(ctx, "page=1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, fetchedAt.After(before))
	assert.Equal(t, "ORD-000", rows[0].CustomOrderID)
	assert.True(t, rows[2].TransactionAmount.Decimal.Equal(decimal.NewFromInt(300)))
	assert.True(t, rows[0].Date.Time.Equal(first[0].Date.Time))
	require.NotNil(t, rows[0].Customer)
	assert.Equal(t, "parent@example.com", rows[0].Customer.Email)

	key, latest, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "page=2", key)
	require.Len(t, latest, 1)
	assert.Equal(t, model.StatusFailed, latest[0].Status)
	assert.False(t, latest[0].TransactionAmount.Valid)

	// An empty result set is still a snapshot.
	require.NoError(t, store.SaveSnapshot(ctx, "page=1", []model.Transaction{}))
	rows, _, err = store.LoadSnapshot(ctx, "page=1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, store.SaveSnapshot(ctx, "k", nil), ErrNilParameter)
}

func TestSQLiteStorage_PruneSnapshots(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.SaveSnapshot(ctx, "old", createTestTransactions(1)))

	n, err := store.PruneSnapshots(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.PruneSnapshots(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, _, err = store.LoadSnapshot(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_DatabaseErrors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("disk I/O error")

	newMock := func(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewFromDB(db), mock
	}

	t.Run("load session", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("SELECT token").WillReturnError(dbErr)

		_, err := store.LoadSession(ctx)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt stored user", func(t *testing.T) {
		store, mock := newMock(t)
		rows := sqlmock.NewRows([]string{"token", "user_json", "created_at", "expires_at"}).
			AddRow("tok", "{not json", time.Now(), nil)
		mock.ExpectQuery("SELECT token").WillReturnRows(rows)
		mock.ExpectExec("DELETE FROM sessions").WillReturnResult(sqlmock.NewResult(0, 1))

		sess, err := store.LoadSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("save session", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("INSERT INTO sessions").WillReturnError(dbErr)

		err := store.SaveSession(ctx, &model.Session{Token: "tok"})
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("set preference", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("INSERT INTO preferences").WillReturnError(dbErr)

		assert.ErrorIs(t, store.SetDarkMode(ctx, true), dbErr)
	})

	t.Run("save snapshot rolls back", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO transaction_snapshots").WillReturnError(dbErr)
		mock.ExpectRollback()

		err := store.SaveSnapshot(ctx, "k", createTestTransactions(1))
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt snapshot payload", func(t *testing.T) {
		store, mock := newMock(t)
		rows := sqlmock.NewRows([]string{"payload", "fetched_at"}).AddRow("[{", time.Now())
		mock.ExpectQuery("SELECT payload").WillReturnRows(rows)

		_, _, err := store.LoadSnapshot(ctx, "k")
		assert.ErrorContains(t, err, "failed to decode snapshot")
	})

	t.Run("migration failure", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("PRAGMA user_version").
			WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS sessions").WillReturnError(dbErr)
		mock.ExpectRollback()

		err := store.Migrate(ctx)
		assert.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "migration 1 failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLiteStorage_ConcurrentAccess(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			if err := store.SaveSnapshot(ctx, fmt.Sprintf("page=%d", id), createTestTransactions(id+1)); err != nil {
				errs <- err
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			if err := store.SetPreference(ctx, fmt.Sprintf("key-%d", id), "v"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
	}

	rows, _, err := store.LoadSnapshot(ctx, "page=9")
	require.NoError(t, err)
	assert.Len(t, rows, 10)
}
