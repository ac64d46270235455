package format

import (
	"unicode/utf8"

	"github.com/Veraticus/schoolpay/internal/model"
)

// Status returns the display label of a status code.
func Status(status model.Status) string {
	return model.NormalizeStatus(string(status)).Label()
}

// PaymentMethod returns the display label of a payment method code.
func PaymentMethod(method string) string {
	return model.PaymentMethodLabel(method)
}

// Type returns the display label of a transaction type code.
func Type(kind string) string {
	return model.TransactionTypeLabel(kind)
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// OrNA returns s, or N/A when s is empty.
func OrNA(s string) string {
	if s == "" {
		return model.NotAvailable
	}
	return s
}
