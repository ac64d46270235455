package query

// PageItem is one entry of a page selector: a page number or a gap.
type PageItem struct {
	Page     int
	Ellipsis bool
}

// PageWindow returns the page selector for current of total pages: the first
// and last pages, the pages within two of current, and a gap marker where
// pages are skipped next to either end.
func PageWindow(current, total int) []PageItem {
	if total <= 0 {
		return nil
	}
	current = min(max(current, 1), total)

	items := make([]PageItem, 0, 9)
	for p := 1; p <= total; p++ {
		switch {
		case p == 1 || p == total || (p >= current-2 && p <= current+2):
			items = append(items, PageItem{Page: p})
		case (p == 2 && current > 4) || (p == total-1 && current < total-3):
			items = append(items, PageItem{Ellipsis: true})
		}
	}
	return items
}
