package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentRequest asks the API to open a gateway collect request.
type PaymentRequest struct {
	Extra       map[string]any  `json:"extra,omitempty"`
	SchoolID    string          `json:"school_id" validate:"required"`
	TrusteeID   string          `json:"trustee_id,omitempty"`
	Gateway     string          `json:"gateway,omitempty"`
	CallbackURL string          `json:"callback_url,omitempty" validate:"omitempty,url"`
	Student     StudentInfo     `json:"student_info"`
	Amount      decimal.Decimal `json:"amount"`
}

// StudentInfo identifies who a payment is for.
type StudentInfo struct {
	Name  string `json:"name" validate:"required"`
	ID    string `json:"id" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// Validate checks the payment request.
func (p PaymentRequest) Validate() error {
	if err := validationError(validate.Struct(p)); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	return nil
}

// MarshalJSON sends the amount as a bare JSON number.
func (p PaymentRequest) MarshalJSON() ([]byte, error) {
	type plain PaymentRequest
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{
		plain:  plain(p),
		Amount: json.Number(p.Amount.String()),
	})
}

// PaymentLink is returned after a collect request is created.
type PaymentLink struct {
	CollectRequestID string `json:"collect_request_id"`
	PaymentURL       string `json:"payment_url"`
	CustomOrderID    string `json:"custom_order_id,omitempty"`
}

// PaymentCallback is the gateway notification relayed to the API.
type PaymentCallback struct {
	OrderInfo CallbackOrder `json:"order_info"`
	Status    int           `json:"status"`
}

// CallbackOrder carries the settled order as reported by the gateway.
type CallbackOrder struct {
	OrderID           string          `json:"order_id" validate:"required"`
	Gateway           string          `json:"gateway,omitempty"`
	Status            string          `json:"status" validate:"required"`
	PaymentMode       string          `json:"payment_mode,omitempty"`
	PaymentDetails    string          `json:"payment_details,omitempty"`
	BankReference     string          `json:"bank_reference,omitempty"`
	PaymentMessage    string          `json:"payment_message,omitempty"`
	ErrorMessage      string          `json:"error_message,omitempty"`
	PaymentTime       string          `json:"payment_time,omitempty"`
	OrderAmount       decimal.Decimal `json:"order_amount"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
}

// Validate checks the callback payload.
func (c PaymentCallback) Validate() error {
	return validationError(validate.Struct(c))
}
