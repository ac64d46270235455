// Package model defines the records exchanged with the school payments API.
package model

import (
	"github.com/shopspring/decimal"
)

// NotAvailable is displayed wherever a value is missing.
const NotAvailable = "N/A"

// Customer identifies the payer attached to a transaction, when the API sends one.
type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Transaction represents a single school payment as returned by the API.
// Amounts and timestamps are optional: the API omits them for orders that
// never reached the gateway.
type Transaction struct {
	Customer          *Customer           `json:"customer,omitempty"`
	CollectID         string              `json:"collect_id"`
	CustomOrderID     string              `json:"custom_order_id"`
	SchoolID          string              `json:"school_id"`
	Gateway           string              `json:"gateway"`
	Currency          string              `json:"currency,omitempty"`
	Status            Status              `json:"status"`
	PaymentMode       string              `json:"payment_mode,omitempty"`
	PaymentMethod     string              `json:"payment_method,omitempty"`
	Type              string              `json:"type,omitempty"`
	Reference         string              `json:"reference,omitempty"`
	Description       string              `json:"description,omitempty"`
	OrderAmount       decimal.NullDecimal `json:"order_amount"`
	TransactionAmount decimal.NullDecimal `json:"transaction_amount"`
	Date              Timestamp           `json:"date"`
	PaymentTime       Timestamp           `json:"payment_time"`
	CreatedAt         Timestamp           `json:"createdAt"`
	UpdatedAt         Timestamp           `json:"updatedAt"`
	Refunded          bool                `json:"refunded,omitempty"`
}

// DisplayID returns the identifier shown to users: the custom order id when
// present, the collect id otherwise.
func (t *Transaction) DisplayID() string {
	switch {
	case t.CustomOrderID != "":
		return t.CustomOrderID
	case t.CollectID != "":
		return t.CollectID
	default:
		return NotAvailable
	}
}

// Method returns the payment method, falling back to the gateway payment mode.
func (t *Transaction) Method() string {
	if t.PaymentMethod != "" {
		return t.PaymentMethod
	}
	return t.PaymentMode
}

// Amount returns the settled amount, or the ordered amount for orders that
// have not settled yet.
func (t *Transaction) Amount() decimal.NullDecimal {
	if t.TransactionAmount.Valid {
		return t.TransactionAmount
	}
	return t.OrderAmount
}

// Normalize folds the status into the canonical vocabulary. Decoding already
// does this for present values; Normalize covers records missing the field.
func (t *Transaction) Normalize() {
	t.Status = NormalizeStatus(string(t.Status))
}

// CanRefund reports whether the transaction is a settled payment that has not
// already been refunded.
func (t *Transaction) CanRefund() bool {
	if t.Refunded || !t.Status.IsSuccessful() {
		return false
	}
	return t.Type == "" || NormalizeCode(t.Type) == "payment"
}

// Pagination describes the server-side page a list response belongs to.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// TransactionPage is one page of transactions from a list endpoint.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}
