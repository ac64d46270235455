package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/query"
)

const dateLayout = "2006-01-02"

// listOptions are the flags shared by every command that lists transactions.
// Server flags shape the request; the rest filter, sort and page the
// fetched rows locally.
type listOptions struct {
	status   string
	method   string
	kind     string
	search   string
	from     string
	to       string
	school   string
	gateway  string
	sort     string
	order    string
	page     int
	limit    int
	viewPage int
	pageSize int
	all      bool
}

func (o *listOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.status, "status", "", "only transactions with this status")
	f.StringVar(&o.method, "method", "", "only this payment method")
	f.StringVar(&o.kind, "type", "", "only this transaction type")
	f.StringVar(&o.search, "search", "", "case-insensitive text search")
	f.StringVar(&o.from, "from", "", "earliest date, YYYY-MM-DD")
	f.StringVar(&o.to, "to", "", "latest date, YYYY-MM-DD (inclusive)")
	f.StringVar(&o.school, "school", "", "only this school id (local filter)")
	f.StringVar(&o.gateway, "gateway", "", "only this gateway (local filter)")
	f.StringVar(&o.sort, "sort", "date", "sort field, e.g. date, transaction_amount, customer.name")
	f.StringVar(&o.order, "order", "desc", "sort direction (asc, desc)")
	f.IntVar(&o.page, "page", 1, "server page to fetch")
	f.IntVar(&o.limit, "limit", 100, "rows per server page")
	f.IntVar(&o.viewPage, "view-page", 1, "page of the filtered rows to show")
	f.IntVar(&o.pageSize, "page-size", 0, "rows per shown page (default display.page_size)")
	f.BoolVar(&o.all, "all", false, "fetch every server page")
}

// parseDay reads a YYYY-MM-DD flag as UTC midnight, the zone record dates
// without an offset decode in.
func parseDay(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --%s must be YYYY-MM-DD", model.ErrInvalidInput, flag)
	}
	return t, nil
}

// params builds the server request.
func (o listOptions) params() (model.ListParams, error) {
	from, err := parseDay("from", o.from)
	if err != nil {
		return model.ListParams{}, err
	}
	to, err := parseDay("to", o.to)
	if err != nil {
		return model.ListParams{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return model.ListParams{}, fmt.Errorf("%w: --to is before --from", model.ErrInvalidInput)
	}

	p := model.ListParams{
		Page:          max(o.page, 1),
		Limit:         o.limit,
		Sort:          o.sort,
		Order:         model.SortOrder(query.ParseDirection(o.order)),
		PaymentMethod: model.NormalizeCode(o.method),
		Type:          model.NormalizeCode(o.kind),
		Search:        strings.TrimSpace(o.search),
		StartDate:     from,
		EndDate:       to,
	}
	if o.status != "" {
		p.Status = model.NormalizeStatus(o.status)
	}
	return p, nil
}

// filter builds the local filter. It repeats the server predicates since
// not every deployment honours them.
func (o listOptions) filter() (query.Filter, error) {
	p, err := o.params()
	if err != nil {
		return query.Filter{}, err
	}
	f := query.Filter{
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		Type:          p.Type,
		Search:        p.Search,
		SchoolID:      strings.TrimSpace(o.school),
		Gateway:       strings.TrimSpace(o.gateway),
		DateFrom:      p.StartDate,
	}
	if !p.EndDate.IsZero() {
		f.DateTo = query.EndOfDay(p.EndDate)
	}
	return f, nil
}

// sortSpec validates the sort flags.
func (o listOptions) sortSpec() (query.Sort, error) {
	field := strings.TrimSpace(o.sort)
	if field == "" {
		return query.DefaultSort(), nil
	}
	if _, ok := model.CanonicalField(field); !ok {
		return query.Sort{}, fmt.Errorf("%w: unknown sort field %q", model.ErrInvalidInput, field)
	}
	return query.Sort{Field: field, Direction: query.ParseDirection(o.order)}, nil
}

// fetchResult is what a listing command fetched from the server.
type fetchResult struct {
	rows       []model.Transaction
	pagination model.Pagination
}

// fetchRows loads one server page, or every page with --all.
func fetchRows(ctx context.Context, fetch export.PageFunc, params model.ListParams, all bool) (fetchResult, error) {
	if !all {
		page, err := fetch(ctx, params)
		if err != nil {
			return fetchResult{}, err
		}
		return fetchResult{rows: page.Transactions, pagination: page.Pagination}, nil
	}

	var bar *progressbar.ProgressBar
	if cli.IsInteractive(os.Stderr) {
		bar = newProgressBar(os.Stderr, "Fetching transactions...")
	}
	rows, err := export.FetchAll(ctx, fetch, params, pageProgress(bar))
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fetchResult{}, err
	}
	return fetchResult{
		rows: rows,
		pagination: model.Pagination{
			Total:      len(rows),
			Page:       1,
			Limit:      len(rows),
			TotalPages: 1,
		},
	}, nil
}

// newProgressBar creates the page progress bar used by multi-page fetches.
func newProgressBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// pageProgress adapts a progress bar to export.FetchAll. A nil bar reports
// through the debug log only.
func pageProgress(bar *progressbar.ProgressBar) func(page, totalPages int) {
	return func(page, totalPages int) {
		slog.Debug("Fetched page", "page", page, "total_pages", totalPages)
		if bar == nil {
			return
		}
		bar.ChangeMax(totalPages)
		if err := bar.Set(page); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

// snapshotKey identifies a cached result set.
func snapshotKey(schoolID string, params model.ListParams) string {
	return snapshotStore{school: schoolID}.scoped(params.Key())
}
