package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Veraticus/schoolpay/internal/model"
)

// ListTransactions fetches one page of transactions across all schools.
func (c *Client) ListTransactions(ctx context.Context, params model.ListParams) (*model.TransactionPage, error) {
	return c.listPage(ctx, "/transactions", params, "Failed to fetch transactions")
}

// TransactionsBySchool fetches one page of a school's transactions.
func (c *Client) TransactionsBySchool(ctx context.Context, schoolID string, params model.ListParams) (*model.TransactionPage, error) {
	return c.listPage(ctx, "/transactions/school/"+url.PathEscape(schoolID), params, "Failed to fetch school transactions")
}

func (c *Client) listPage(ctx context.Context, path string, params model.ListParams, fallback string) (*model.TransactionPage, error) {
	var page model.TransactionPage
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     path,
		query:    params.Values(),
		fallback: fallback,
	}, &page)
	if err != nil {
		return nil, err
	}

	for i := range page.Transactions {
		page.Transactions[i].Normalize()
	}
	fillPagination(&page, params)

	return &page, nil
}

// fillPagination completes pagination metadata the server left out.
func fillPagination(page *model.TransactionPage, params model.ListParams) {
	p := &page.Pagination
	if p.Page <= 0 {
		p.Page = max(params.Page, 1)
	}
	if p.Limit <= 0 {
		p.Limit = params.Limit
	}
	if p.Total <= 0 {
		p.Total = len(page.Transactions)
	}
	if p.TotalPages <= 0 {
		p.TotalPages = 1
		if p.Limit > 0 && p.Total > 0 {
			p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
		}
	}
}

// TransactionStatus looks up a transaction by custom order id or collect id.
func (c *Client) TransactionStatus(ctx context.Context, orderID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/transactions/status/" + url.PathEscape(orderID),
		fallback: "Failed to fetch transaction status",
	}, &tx)
	if err != nil {
		return nil, err
	}
	tx.Normalize()
	return &tx, nil
}

// SchoolStats fetches the summary statistics for a school.
func (c *Client) SchoolStats(ctx context.Context, schoolID string) (*model.SchoolStats, error) {
	var stats model.SchoolStats
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/transactions/school/" + url.PathEscape(schoolID) + "/stats",
		fallback: "Failed to fetch transaction statistics",
	}, &stats)
	if err != nil {
		return nil, err
	}
	if stats.SchoolID == "" {
		stats.SchoolID = schoolID
	}
	return &stats, nil
}

// ExportSchoolCSV downloads the server-rendered CSV export for a school.
func (c *Client) ExportSchoolCSV(ctx context.Context, schoolID string, params model.ListParams) ([]byte, error) {
	return c.send(ctx, call{
		method:   http.MethodGet,
		path:     "/transactions/school/" + url.PathEscape(schoolID) + "/export",
		query:    params.Values(),
		fallback: "Failed to export transactions",
	})
}
