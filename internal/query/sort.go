package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Veraticus/schoolpay/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc in any case; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort orders transactions by a (possibly dotted) field path.
type Sort struct {
	Field     string
	Direction Direction
}

// DefaultSort shows the newest transactions first.
func DefaultSort() Sort {
	return Sort{Field: "date", Direction: Desc}
}

// SortFields lists the fields offered for interactive sorting, in cycle order.
func SortFields() []string {
	return []string{"date", "payment_time", "transaction_amount", "order_amount", "status", "custom_order_id", "school_id", "gateway", "customer.name"}
}

// DefaultLanguage is the collation used when none is configured.
var DefaultLanguage = language.English

// Sorter compares strings with the collation rules of a language.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a sorter for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// SortRows returns a sorted copy of rows using the default collation.
func SortRows(rows []model.Transaction, s Sort) []model.Transaction {
	return NewSorter(DefaultLanguage).SortRows(rows, s)
}

// SortRows returns a sorted copy of rows. Absent values sort last in either
// direction, ties keep their input order, and an unknown field leaves the
// order unchanged.
func (st *Sorter) SortRows(rows []model.Transaction, s Sort) []model.Transaction {
	key, ok := model.CanonicalField(s.Field)
	if !ok {
		return slices.Clone(rows)
	}

	// Collators keep internal buffers and are not safe to share.
	coll := collate.New(st.tag, collate.IgnoreCase)

	values := make([]model.FieldValue, len(rows))
	for i := range rows {
		values[i], _ = rows[i].Lookup(key)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		return compareValues(coll, values[a], values[b], s.Direction)
	})

	sorted := make([]model.Transaction, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	return sorted
}

func compareValues(coll *collate.Collator, a, b model.FieldValue, dir Direction) int {
	switch {
	case a.Absent() && b.Absent():
		return 0
	case a.Absent():
		return 1
	case b.Absent():
		return -1
	}

	var c int
	switch a.Kind {
	case model.FieldString:
		c = coll.CompareString(a.Str, b.Str)
	case model.FieldNumber:
		c = a.Number.Cmp(b.Number)
	case model.FieldTime:
		c = cmp.Compare(a.Time.UnixMilli(), b.Time.UnixMilli())
	}

	if dir == Desc {
		return -c
	}
	return c
}

// Apply filters then sorts rows. The input slice is never modified.
func Apply(rows []model.Transaction, f Filter, s Sort) []model.Transaction {
	return SortRows(FilterRows(rows, f), s)
}
