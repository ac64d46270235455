package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/service"
)

// MaxPages bounds FetchAll so a misbehaving server cannot loop it forever.
const MaxPages = 1000

// ErrPageLimit is returned when the server reports more than MaxPages pages.
var ErrPageLimit = errors.New("page limit reached")

// PageFunc fetches one page of a listing.
type PageFunc func(ctx context.Context, params model.ListParams) (*model.TransactionPage, error)

// ListAll pages through every transaction across schools.
func ListAll(src service.TransactionSource) PageFunc {
	return src.ListTransactions
}

// SchoolAll pages through every transaction of one school.
func SchoolAll(src service.TransactionSource, schoolID string) PageFunc {
	return func(ctx context.Context, params model.ListParams) (*model.TransactionPage, error) {
		return src.TransactionsBySchool(ctx, schoolID, params)
	}
}

// FetchAll requests successive pages starting at page 1 until the server's
// last page, calling progress after each one.
func FetchAll(ctx context.Context, fetch PageFunc, params model.ListParams, progress func(page, totalPages int)) ([]model.Transaction, error) {
	params.Page = 1
	var all []model.Transaction

	for params.Page <= MaxPages {
		page, err := fetch(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", params.Page, err)
		}
		all = append(all, page.Transactions...)

		totalPages := max(page.Pagination.TotalPages, 1)
		if progress != nil {
			progress(params.Page, totalPages)
		}
		if params.Page >= totalPages || len(page.Transactions) == 0 {
			return all, nil
		}
		params.Page++
	}

	return nil, fmt.Errorf("%w: stopped after %d pages, narrow the filters", ErrPageLimit, MaxPages)
}
