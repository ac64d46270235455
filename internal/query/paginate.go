package query

import (
	"slices"

	"github.com/Veraticus/schoolpay/internal/model"
)

// DefaultPageSize is used when no page size is given.
const DefaultPageSize = 10

// PageSizeOptions are the page sizes offered to the user.
var PageSizeOptions = []int{5, 10, 25, 50, 100}

// NextPageSize returns the option after size, wrapping around.
func NextPageSize(size int) int {
	i := slices.Index(PageSizeOptions, size)
	return PageSizeOptions[(i+1)%len(PageSizeOptions)]
}

// Page is one page of a derived result set. Page numbers are 1-based; From
// and To are the 1-based positions of the first and last row shown, both 0
// when the page is empty.
type Page struct {
	Rows       []model.Transaction
	Page       int
	Size       int
	Total      int
	TotalPages int
	From       int
	To         int
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Page > 1
}

// Paginate slices rows into the requested page. The page number is clamped
// into range and a non-positive size falls back to DefaultPageSize.
func Paginate(rows []model.Transaction, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	totalPages := max(1, (total+size-1)/size)
	page = min(max(page, 1), totalPages)

	start := min((page-1)*size, total)
	end := min(start+size, total)

	p := Page{
		Rows:       slices.Clone(rows[start:end]),
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
	if end > start {
		p.From = start + 1
		p.To = end
	}
	return p
}
