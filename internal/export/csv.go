package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/service"
)

// CSVWriter writes exported tables as CSV.
type CSVWriter struct {
	w io.Writer
}

var _ service.TableWriter = (*CSVWriter)(nil)

// NewCSVWriter creates a writer emitting CSV to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// WriteTable writes the header row followed by one record per row.
func (c *CSVWriter) WriteTable(_ context.Context, header []string, rows [][]string) error {
	cw := csv.NewWriter(c.w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// WriteCSV renders rows with fields and writes them to w.
func WriteCSV(w io.Writer, rows []model.Transaction, fields []Field, opts Options) error {
	return Write(context.Background(), NewCSVWriter(w), rows, fields, opts)
}

// Write renders rows with fields and hands the table to dst.
func Write(ctx context.Context, dst service.TableWriter, rows []model.Transaction, fields []Field, opts Options) error {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	header, records := Table(rows, fields, opts)
	return dst.WriteTable(ctx, header, records)
}
