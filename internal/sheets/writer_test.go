package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeSheets is a minimal in-memory stand-in for the Sheets REST API.
type fakeSheets struct {
	updates    []sheets.ValueRange
	requests   []string
	existing   []string
	mu         sync.Mutex
	failWrites int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets")
	f.requests = append(f.requests, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && path == "":
		var req sheets.Spreadsheet
		_ = json.NewDecoder(r.Body).Decode(&req)
		req.SpreadsheetId = "new-sheet"
		req.SpreadsheetUrl = "https://example.com/new-sheet"
		req.Sheets[0].Properties.SheetId = 7
		_ = json.NewEncoder(w).Encode(req)
	case r.Method == http.MethodGet:
		resp := sheets.Spreadsheet{SpreadsheetId: strings.TrimPrefix(path, "/")}
		for i, title := range f.existing {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title, SheetId: int64(i + 1)}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	case strings.HasSuffix(path, ":clear"):
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut:
		if f.failWrites > 0 {
			f.failWrites--
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"code":503,"message":"unavailable"}}`)
			return
		}
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updates = append(f.updates, vr)
		_, _ = io.WriteString(w, `{}`)
	case strings.HasSuffix(path, ":batchUpdate"):
		_, _ = io.WriteString(w, `{"replies":[{"addSheet":{"properties":{"sheetId":42}}}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestWriter(t *testing.T, fake *fakeSheets, cfg Config) *Writer {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return NewWriterWithService(svc, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWriter_WriteTable_CreatesSpreadsheet(t *testing.T) {
	fake := &fakeSheets{}
	cfg := DefaultConfig()
	cfg.RetryDelay = 0
	w := newTestWriter(t, fake, cfg)

	header := []string{"ID", "Status"}
	rows := [][]string{{"ORD-1", "Success"}, {"ORD-2", "Pending"}}

	require.NoError(t, w.WriteTable(context.Background(), header, rows))

	assert.Equal(t, "new-sheet", w.SpreadsheetID())
	assert.Equal(t, "https://example.com/new-sheet", w.SpreadsheetURL())
	require.Len(t, fake.updates, 1)
	require.Len(t, fake.updates[0].Values, 3)
	assert.Equal(t, []any{"ID", "Status"}, fake.updates[0].Values[0])
	assert.Equal(t, []any{"ORD-2", "Pending"}, fake.updates[0].Values[2])
}

func TestWriter_WriteTable_Batches(t *testing.T) {
	fake := &fakeSheets{}
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.EnableFormatting = false
	w := newTestWriter(t, fake, cfg)

	rows := [][]string{{"1"}, {"2"}, {"3"}, {"4"}}
	require.NoError(t, w.WriteTable(context.Background(), []string{"ID"}, rows))

	assert.Len(t, fake.updates, 3)
}

func TestWriter_WriteTable_ReusesSpreadsheet(t *testing.T) {
	fake := &fakeSheets{existing: []string{"Summary"}}
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "existing-id"
	w := newTestWriter(t, fake, cfg)

	require.NoError(t, w.WriteTable(context.Background(), []string{"ID"}, nil))

	assert.Equal(t, "existing-id", w.SpreadsheetID())
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/existing-id", w.SpreadsheetURL())
	assert.Contains(t, fake.requests, "GET /existing-id")
	assert.Contains(t, fake.requests, "POST /existing-id:batchUpdate")
}

func TestWriter_WriteTable_RetriesWrites(t *testing.T) {
	fake := &fakeSheets{failWrites: 1}
	cfg := DefaultConfig()
	cfg.RetryDelay = 1
	cfg.EnableFormatting = false
	w := newTestWriter(t, fake, cfg)

	require.NoError(t, w.WriteTable(context.Background(), []string{"ID"}, [][]string{{"1"}}))
	assert.Len(t, fake.updates, 1)
}

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	require.NoError(t, m.WriteTable(context.Background(), []string{"A"}, [][]string{{"1"}}))
	assert.Equal(t, 1, m.WriteCalls)
	assert.Equal(t, []string{"A"}, m.LastHeader)

	boom := errors.New("boom")
	m.SetWriteError(boom)
	assert.ErrorIs(t, m.WriteTable(context.Background(), nil, nil), boom)
	assert.Equal(t, 2, m.WriteCalls)
}
