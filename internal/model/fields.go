package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldKind describes the type of a resolved field value.
type FieldKind int

// Field kinds.
const (
	FieldAbsent FieldKind = iota
	FieldString
	FieldNumber
	FieldTime
)

// FieldValue is a transaction field resolved by path.
type FieldValue struct {
	Time   time.Time
	Str    string
	Number decimal.Decimal
	Kind   FieldKind
}

// Absent reports whether the field had no value.
func (v FieldValue) Absent() bool {
	return v.Kind == FieldAbsent
}

// stringField treats the empty string as absent, so blank values sort last.
func stringField(s string) FieldValue {
	if s == "" {
		return FieldValue{}
	}
	return FieldValue{Kind: FieldString, Str: s}
}

func numberField(d decimal.NullDecimal) FieldValue {
	if !d.Valid {
		return FieldValue{}
	}
	return FieldValue{Kind: FieldNumber, Number: d.Decimal}
}

func timeField(ts Timestamp) FieldValue {
	if !ts.Valid {
		return FieldValue{}
	}
	return FieldValue{Kind: FieldTime, Time: ts.Time}
}

// fieldAliases maps the camelCase keys used by older clients to the API names.
var fieldAliases = map[string]string{
	"id":                "collect_id",
	"collectid":         "collect_id",
	"customorderid":     "custom_order_id",
	"orderid":           "custom_order_id",
	"schoolid":          "school_id",
	"amount":            "transaction_amount",
	"orderamount":       "order_amount",
	"transactionamount": "transaction_amount",
	"paymentmethod":     "payment_method",
	"paymentmode":       "payment_mode",
	"paymenttime":       "payment_time",
	"created_at":        "createdat",
	"updated_at":        "updatedat",
}

// CanonicalField returns the canonical spelling of a field path, or false when
// no transaction field answers to it.
func CanonicalField(path string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(path))
	if alias, ok := fieldAliases[key]; ok {
		key = alias
	}
	if _, ok := fieldResolvers[key]; !ok {
		return "", false
	}
	return key, true
}

var fieldResolvers = map[string]func(*Transaction) FieldValue{
	"collect_id":         func(t *Transaction) FieldValue { return stringField(t.CollectID) },
	"custom_order_id":    func(t *Transaction) FieldValue { return stringField(t.CustomOrderID) },
	"school_id":          func(t *Transaction) FieldValue { return stringField(t.SchoolID) },
	"gateway":            func(t *Transaction) FieldValue { return stringField(t.Gateway) },
	"currency":           func(t *Transaction) FieldValue { return stringField(t.Currency) },
	"status":             func(t *Transaction) FieldValue { return stringField(string(t.Status)) },
	"payment_mode":       func(t *Transaction) FieldValue { return stringField(t.PaymentMode) },
	"payment_method":     func(t *Transaction) FieldValue { return stringField(t.Method()) },
	"type":               func(t *Transaction) FieldValue { return stringField(t.Type) },
	"reference":          func(t *Transaction) FieldValue { return stringField(t.Reference) },
	"description":        func(t *Transaction) FieldValue { return stringField(t.Description) },
	"order_amount":       func(t *Transaction) FieldValue { return numberField(t.OrderAmount) },
	"transaction_amount": func(t *Transaction) FieldValue { return numberField(t.TransactionAmount) },
	"date":               func(t *Transaction) FieldValue { return timeField(t.Date) },
	"payment_time":       func(t *Transaction) FieldValue { return timeField(t.PaymentTime) },
	"createdat":          func(t *Transaction) FieldValue { return timeField(t.CreatedAt) },
	"updatedat":          func(t *Transaction) FieldValue { return timeField(t.UpdatedAt) },
	"customer.name": func(t *Transaction) FieldValue {
		if t.Customer == nil {
			return FieldValue{}
		}
		return stringField(t.Customer.Name)
	},
	"customer.email": func(t *Transaction) FieldValue {
		if t.Customer == nil {
			return FieldValue{}
		}
		return stringField(t.Customer.Email)
	},
}

// Lookup resolves a (possibly dotted) field path. The boolean is false when
// the path names no known field; empty strings resolve as absent.
func (t *Transaction) Lookup(path string) (FieldValue, bool) {
	key, ok := CanonicalField(path)
	if !ok {
		return FieldValue{}, false
	}
	return fieldResolvers[key](t), true
}
