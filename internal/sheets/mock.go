package sheets

import (
	"context"
	"sync"
)

// MockWriter records exported tables for tests.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, header []string, rows [][]string) error
	LastHeader []string
	LastRows   [][]string
	WriteCalls int
	mu         sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteTable implements service.TableWriter.
func (m *MockWriter) WriteTable(ctx context.Context, header []string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls++
	m.LastHeader = header
	m.LastRows = rows

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, header, rows)
	}
	return nil
}

// SetWriteError configures the mock to fail every write with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(context.Context, []string, [][]string) error {
		return err
	}
}
