package format

import (
	"github.com/Veraticus/schoolpay/internal/model"
)

// Default layouts for dates and timestamps.
const (
	DefaultDateLayout     = "01/02/2006"
	DefaultDateTimeLayout = "01/02/2006 15:04:05"
)

// Layouts holds the configured date layouts.
type Layouts struct {
	DateLayout     string
	DateTimeLayout string
}

// DefaultLayouts returns the built-in layouts.
func DefaultLayouts() Layouts {
	return Layouts{DateLayout: DefaultDateLayout, DateTimeLayout: DefaultDateTimeLayout}
}

// Date formats ts with the date layout; absent values render as N/A.
func (l Layouts) Date(ts model.Timestamp) string {
	return render(ts, l.DateLayout, DefaultDateLayout)
}

// DateTime formats ts with the timestamp layout; absent values render as N/A.
func (l Layouts) DateTime(ts model.Timestamp) string {
	return render(ts, l.DateTimeLayout, DefaultDateTimeLayout)
}

// Date formats ts with the default date layout.
func Date(ts model.Timestamp) string {
	return DefaultLayouts().Date(ts)
}

// DateTime formats ts with the default timestamp layout.
func DateTime(ts model.Timestamp) string {
	return DefaultLayouts().DateTime(ts)
}

func render(ts model.Timestamp, layout, fallback string) string {
	if !ts.Valid {
		return model.NotAvailable
	}
	if layout == "" {
		layout = fallback
	}
	return ts.Time.Format(layout)
}
