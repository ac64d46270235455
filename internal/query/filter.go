// Package query derives the displayed slice of transactions: it filters,
// sorts and paginates an in-memory page without touching its input.
package query

import (
	"strings"
	"time"

	"github.com/Veraticus/schoolpay/internal/model"
)

// DateFieldAuto picks the first present of date, payment time and creation time.
const DateFieldAuto = ""

var autoDateFields = []string{"date", "payment_time", "createdat"}

// Filter selects transactions. Zero-valued fields are inactive; active
// predicates must all match.
type Filter struct {
	DateFrom      time.Time
	DateTo        time.Time
	Search        string
	Status        model.Status
	PaymentMethod string
	Type          string
	SchoolID      string
	Gateway       string
	DateField     string
}

// Active reports whether any predicate is set.
func (f Filter) Active() bool {
	return f.Search != "" || f.Status != "" || f.PaymentMethod != "" || f.Type != "" ||
		f.SchoolID != "" || f.Gateway != "" || !f.DateFrom.IsZero() || !f.DateTo.IsZero()
}

// EndOfDay returns the last instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// compiled is a Filter with its inputs normalized once.
type compiled struct {
	from, to      time.Time
	search        string
	status        model.Status
	paymentMethod string
	kind          string
	schoolID      string
	gateway       string
	dateFields    []string
}

func (f Filter) compile() compiled {
	c := compiled{
		search:        strings.ToLower(strings.TrimSpace(f.Search)),
		paymentMethod: model.NormalizeCode(f.PaymentMethod),
		kind:          model.NormalizeCode(f.Type),
		schoolID:      strings.ToLower(strings.TrimSpace(f.SchoolID)),
		gateway:       strings.ToLower(strings.TrimSpace(f.Gateway)),
		from:          f.DateFrom,
		dateFields:    autoDateFields,
	}
	if f.Status != "" {
		c.status = model.NormalizeStatus(string(f.Status))
	}
	if !f.DateTo.IsZero() {
		c.to = EndOfDay(f.DateTo)
	}
	if f.DateField != DateFieldAuto {
		c.dateFields = []string{f.DateField}
	}
	return c
}

// Match reports whether tx satisfies every active predicate.
func (f Filter) Match(tx *model.Transaction) bool {
	return f.compile().match(tx)
}

func (c compiled) match(tx *model.Transaction) bool {
	if c.search != "" && !c.matchSearch(tx) {
		return false
	}
	if c.status != "" && tx.Status != c.status {
		return false
	}
	if c.paymentMethod != "" && model.NormalizeCode(tx.Method()) != c.paymentMethod {
		return false
	}
	if c.kind != "" && model.NormalizeCode(tx.Type) != c.kind {
		return false
	}
	if c.schoolID != "" && strings.ToLower(tx.SchoolID) != c.schoolID {
		return false
	}
	if c.gateway != "" && strings.ToLower(tx.Gateway) != c.gateway {
		return false
	}
	if !c.from.IsZero() || !c.to.IsZero() {
		ts, ok := c.date(tx)
		// Records without a usable date never satisfy a date bound.
		if !ok {
			return false
		}
		if !c.from.IsZero() && ts.Before(c.from) {
			return false
		}
		if !c.to.IsZero() && ts.After(c.to) {
			return false
		}
	}
	return true
}

func (c compiled) matchSearch(tx *model.Transaction) bool {
	candidates := []string{tx.Reference, tx.Description, tx.CollectID, tx.CustomOrderID}
	if tx.Customer != nil {
		candidates = append(candidates, tx.Customer.Name, tx.Customer.Email)
	}
	for _, s := range candidates {
		if s != "" && strings.Contains(strings.ToLower(s), c.search) {
			return true
		}
	}
	return false
}

func (c compiled) date(tx *model.Transaction) (time.Time, bool) {
	for _, field := range c.dateFields {
		v, ok := tx.Lookup(field)
		if ok && v.Kind == model.FieldTime {
			return v.Time, true
		}
	}
	return time.Time{}, false
}

// FilterRows returns the transactions matching f, in input order.
func FilterRows(rows []model.Transaction, f Filter) []model.Transaction {
	out := make([]model.Transaction, 0, len(rows))
	c := f.compile()
	for i := range rows {
		if c.match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
