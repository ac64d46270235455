package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/schoolpay/internal/common"
	"github.com/Veraticus/schoolpay/internal/service"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements service.TableWriter for Google Sheets.
type Writer struct {
	service        *sheets.Service
	logger         *slog.Logger
	spreadsheetID  string
	spreadsheetURL string
	config         Config
}

// NewWriter creates a new Google Sheets writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return NewWriterWithService(srv, config, logger), nil
}

// NewWriterWithService wraps an existing Sheets service.
func NewWriterWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SheetTitle == "" {
		config.SheetTitle = "Transactions"
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{service: srv, config: config, logger: logger}
}

// SpreadsheetID returns the id of the spreadsheet written by the last call.
func (w *Writer) SpreadsheetID() string {
	return w.spreadsheetID
}

// SpreadsheetURL returns the browser URL of the last written spreadsheet.
func (w *Writer) SpreadsheetURL() string {
	if w.spreadsheetURL != "" {
		return w.spreadsheetURL
	}
	if w.spreadsheetID == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + w.spreadsheetID
}

// WriteTable replaces the contents of the transactions sheet with header and rows.
func (w *Writer) WriteTable(ctx context.Context, header []string, rows [][]string) error {
	w.logger.Info("starting sheets export", "rows", len(rows), "columns", len(header))

	spreadsheetID, sheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if err := common.WithRetry(ctx, func() error {
		return w.clearSheet(ctx, spreadsheetID)
	}, retryOpts); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, toCells(header))
	for _, row := range rows {
		values = append(values, toCells(row))
	}

	if err := common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, sheetID, len(header))
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// getOrCreateSpreadsheet resolves the target spreadsheet and the id of the
// transactions sheet inside it, creating either when missing.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, int64, error) {
	if w.config.SpreadsheetID != "" {
		existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", 0, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		w.spreadsheetID = existing.SpreadsheetId
		w.spreadsheetURL = existing.SpreadsheetUrl

		for _, sheet := range existing.Sheets {
			if sheet.Properties != nil && sheet.Properties.Title == w.config.SheetTitle {
				return existing.SpreadsheetId, sheet.Properties.SheetId, nil
			}
		}

		sheetID, err := w.addSheet(ctx, existing.SpreadsheetId)
		if err != nil {
			return "", 0, err
		}
		return existing.SpreadsheetId, sheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: w.config.SheetTitle}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	w.spreadsheetID = created.SpreadsheetId
	w.spreadsheetURL = created.SpreadsheetUrl

	var sheetID int64
	if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
		sheetID = created.Sheets[0].Properties.SheetId
	}
	return created.SpreadsheetId, sheetID, nil
}

func (w *Writer) addSheet(ctx context.Context, spreadsheetID string) (int64, error) {
	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: w.config.SheetTitle}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add sheet %q: %w", w.config.SheetTitle, err)
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		return resp.Replies[0].AddSheet.Properties.SheetId, nil
	}
	return 0, nil
}

func (w *Writer) sheetRange(cells string) string {
	return fmt.Sprintf("'%s'!%s", w.config.SheetTitle, cells)
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, w.sheetRange("A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes the data to the spreadsheet.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, w.sheetRange(fmt.Sprintf("A%d", i+1)), &sheets.ValueRange{Values: batch}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds and freezes the header row and sizes the columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, columns int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
