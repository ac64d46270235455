// Package export turns a derived transaction slice into a labelled table and
// writes it as CSV or to any service.TableWriter.
package export

import (
	"fmt"
	"strings"

	"github.com/Veraticus/schoolpay/internal/format"
	"github.com/Veraticus/schoolpay/internal/model"
)

// Field is one exported column: a (possibly dotted) transaction field path
// and the header label it is written under.
type Field struct {
	Key   string
	Label string
}

// DefaultFields is the standard column set, in output order.
var DefaultFields = []Field{
	{Key: "collect_id", Label: "ID"},
	{Key: "custom_order_id", Label: "Order ID"},
	{Key: "school_id", Label: "School ID"},
	{Key: "gateway", Label: "Gateway"},
	{Key: "order_amount", Label: "Order Amount"},
	{Key: "transaction_amount", Label: "Transaction Amount"},
	{Key: "currency", Label: "Currency"},
	{Key: "status", Label: "Status"},
	{Key: "payment_method", Label: "Payment Method"},
	{Key: "type", Label: "Type"},
	{Key: "customer.name", Label: "Customer Name"},
	{Key: "customer.email", Label: "Customer Email"},
	{Key: "description", Label: "Description"},
	{Key: "payment_time", Label: "Payment Time"},
	{Key: "createdAt", Label: "Created At"},
	{Key: "updatedAt", Label: "Updated At"},
}

// ParseFields parses a comma separated list of field paths into columns
// labelled like the default set, or by the path itself for other fields.
func ParseFields(spec string) ([]Field, error) {
	labels := make(map[string]string, len(DefaultFields))
	for _, f := range DefaultFields {
		key, _ := model.CanonicalField(f.Key)
		labels[key] = f.Label
	}

	var fields []Field
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		key, ok := model.CanonicalField(raw)
		if !ok {
			return nil, fmt.Errorf("unknown export field %q", raw)
		}
		label, ok := labels[key]
		if !ok {
			label = raw
		}
		fields = append(fields, Field{Key: raw, Label: label})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no export fields given")
	}
	return fields, nil
}

// Header returns the labels of fields in order.
func Header(fields []Field) []string {
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Label
	}
	return header
}

// Options controls how values are rendered.
type Options struct {
	Layouts  format.Layouts
	Currency string
}

// DefaultOptions renders with the built-in layouts and currency.
func DefaultOptions() Options {
	return Options{Layouts: format.DefaultLayouts(), Currency: format.DefaultCurrency}
}

// Cell is one labelled value of an exported row.
type Cell struct {
	Label string
	Value string
}

// Row is an exported record: its cells in field order.
type Row []Cell

// Get returns the value under label.
func (r Row) Get(label string) (string, bool) {
	for _, c := range r {
		if c.Label == label {
			return c.Value, true
		}
	}
	return "", false
}

// Values returns the cell values in field order.
func (r Row) Values() []string {
	values := make([]string, len(r))
	for i, c := range r {
		values[i] = c.Value
	}
	return values
}

// BuildRows renders one row per transaction. Absent values become "".
func BuildRows(rows []model.Transaction, fields []Field, opts Options) []Row {
	out := make([]Row, len(rows))
	for i := range rows {
		row := make(Row, len(fields))
		for j, f := range fields {
			row[j] = Cell{Label: f.Label, Value: renderField(&rows[i], f.Key, opts)}
		}
		out[i] = row
	}
	return out
}

// Table renders rows as a header plus string records.
func Table(rows []model.Transaction, fields []Field, opts Options) ([]string, [][]string) {
	built := BuildRows(rows, fields, opts)
	records := make([][]string, len(built))
	for i, r := range built {
		records[i] = r.Values()
	}
	return Header(fields), records
}

func renderField(tx *model.Transaction, key string, opts Options) string {
	v, ok := tx.Lookup(key)
	if !ok || v.Absent() {
		return ""
	}

	canonical, _ := model.CanonicalField(key)
	switch canonical {
	case "status":
		return format.Status(tx.Status)
	case "payment_method":
		return format.PaymentMethod(v.Str)
	case "type":
		return format.Type(v.Str)
	}

	switch v.Kind {
	case model.FieldTime:
		return opts.Layouts.DateTime(model.NewTimestamp(v.Time))
	case model.FieldNumber:
		currency := tx.Currency
		if currency == "" {
			currency = opts.Currency
		}
		return format.CurrencyValue(v.Number, currency)
	default:
		return v.Str
	}
}
