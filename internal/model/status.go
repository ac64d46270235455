package model

import (
	"encoding/json"
	"strings"
)

// Status is the canonical lifecycle state of a transaction.
type Status string

// Canonical statuses. Every vocabulary the API has used is folded into these.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

// UnknownLabel is shown for codes missing from a label table.
const UnknownLabel = "Unknown"

var statusLabels = map[Status]string{
	StatusPending:    "Pending",
	StatusProcessing: "Processing",
	StatusSuccess:    "Success",
	StatusCompleted:  "Completed",
	StatusFailed:     "Failed",
	StatusRefunded:   "Refunded",
	StatusCancelled:  "Cancelled",
}

var statusAliases = map[string]Status{
	"canceled":   StatusCancelled,
	"failure":    StatusFailed,
	"successful": StatusSuccess,
	"paid":       StatusSuccess,
	"complete":   StatusCompleted,
	"in_process": StatusProcessing,
}

// Statuses lists the canonical statuses in display order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusProcessing,
		StatusSuccess,
		StatusCompleted,
		StatusFailed,
		StatusRefunded,
		StatusCancelled,
	}
}

// NormalizeStatus lowercases raw and folds known aliases into the canonical
// vocabulary. An empty status is treated as pending; other unknown values are
// kept lowercased so they stay filterable.
func NormalizeStatus(raw string) Status {
	code := NormalizeCode(raw)
	if code == "" {
		return StatusPending
	}
	if alias, ok := statusAliases[code]; ok {
		return alias
	}
	return Status(code)
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return UnknownLabel
}

// Known reports whether s is one of the canonical statuses.
func (s Status) Known() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsSuccessful reports whether money moved for this status.
func (s Status) IsSuccessful() bool {
	return s == StatusSuccess || s == StatusCompleted
}

// UnmarshalJSON normalizes the status on receipt.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = StatusPending
		return nil
	}
	*s = NormalizeStatus(*raw)
	return nil
}

// NormalizeCode lowercases an enum code and maps spaces and hyphens to
// underscores, so "Credit Card", "CREDIT-CARD" and "credit_card" agree.
func NormalizeCode(raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(code)
}

var paymentMethodLabels = map[string]string{
	"credit_card":   "Credit Card",
	"debit_card":    "Debit Card",
	"bank_transfer": "Bank Transfer",
	"netbanking":    "Net Banking",
	"upi":           "UPI",
	"wallet":        "Wallet",
	"paypal":        "PayPal",
	"crypto":        "Cryptocurrency",
	"apple_pay":     "Apple Pay",
	"google_pay":    "Google Pay",
	"cash":          "Cash",
	"other":         "Other",
}

var transactionTypeLabels = map[string]string{
	"payment":    "Payment",
	"refund":     "Refund",
	"chargeback": "Chargeback",
	"deposit":    "Deposit",
	"withdrawal": "Withdrawal",
	"transfer":   "Transfer",
	"adjustment": "Adjustment",
	"fee":        "Fee",
}

// PaymentMethodLabel returns the display name of a payment method code.
func PaymentMethodLabel(method string) string {
	if label, ok := paymentMethodLabels[NormalizeCode(method)]; ok {
		return label
	}
	return UnknownLabel
}

// TransactionTypeLabel returns the display name of a transaction type code.
func TransactionTypeLabel(kind string) string {
	if label, ok := transactionTypeLabels[NormalizeCode(kind)]; ok {
		return label
	}
	return UnknownLabel
}

// PaymentMethods lists the known payment method codes in display order.
func PaymentMethods() []string {
	return []string{
		"credit_card", "debit_card", "bank_transfer", "netbanking", "upi",
		"wallet", "paypal", "crypto", "apple_pay", "google_pay", "cash", "other",
	}
}
