package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/schoolpay/internal/model"
)

// FileStore persists the session as a JSON file readable only by its owner.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// LoadSession reads the stored session. A missing file means no session; an
// unreadable one is removed and also treated as no session.
func (s *FileStore) LoadSession(_ context.Context) (*model.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.Token == "" {
		slog.Warn("Discarding unreadable session file", "file", s.path, "error", err)
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove corrupt session file: %w", rmErr)
		}
		return nil, nil
	}

	return &sess, nil
}

// SaveSession writes the session atomically.
func (s *FileStore) SaveSession(_ context.Context, sess *model.Session) error {
	if sess == nil {
		return fmt.Errorf("cannot save nil session")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return os.Rename(tmp.Name(), s.path)
}

// ClearSession removes the session file.
func (s *FileStore) ClearSession(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
