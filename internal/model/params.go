package model

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SortOrder is the direction requested from the server.
type SortOrder string

// Sort orders accepted by the list endpoints.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams are the query parameters accepted by the transaction list
// endpoints. Zero values are omitted from the request.
type ListParams struct {
	StartDate     time.Time
	EndDate       time.Time
	Sort          string
	Order         SortOrder
	Status        Status
	PaymentMethod string
	Type          string
	Search        string
	Page          int
	Limit         int
}

// Values encodes the parameters as a URL query.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Order != "" {
		v.Set("order", strings.ToLower(string(p.Order)))
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	if !p.StartDate.IsZero() {
		v.Set("startDate", p.StartDate.Format("2006-01-02"))
	}
	if !p.EndDate.IsZero() {
		v.Set("endDate", p.EndDate.Format("2006-01-02"))
	}
	if p.PaymentMethod != "" {
		v.Set("paymentMethod", p.PaymentMethod)
	}
	if p.Type != "" {
		v.Set("type", p.Type)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

// Key returns a stable identifier for the parameter set, used to cache the
// last result of a query.
func (p ListParams) Key() string {
	return p.Values().Encode()
}

// SchoolStats is the summary returned by the school statistics endpoint.
type SchoolStats struct {
	ByStatus         map[Status]int  `json:"byStatus,omitempty"`
	SchoolID         string          `json:"school_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	SuccessfulAmount decimal.Decimal `json:"successfulAmount"`
	TotalCount       int             `json:"totalCount"`
	SuccessfulCount  int             `json:"successfulCount"`
}
