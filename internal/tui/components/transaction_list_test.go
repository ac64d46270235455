package components

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/query"
	"github.com/Veraticus/schoolpay/internal/tui/themes"
)

func listRows(n int) []model.Transaction {
	rows := make([]model.Transaction, n)
	for i := range rows {
		rows[i] = model.Transaction{
			CustomOrderID:     fmt.Sprintf("ORD-%02d", i),
			Status:            model.StatusSuccess,
			Currency:          "INR",
			TransactionAmount: decimal.NewNullDecimal(decimal.NewFromInt(int64(1000 * (i + 1)))),
			Date:              model.NewTimestamp(time.Date(2024, 2, 1+i, 0, 0, 0, 0, time.UTC)),
			Customer:          &model.Customer{Name: fmt.Sprintf("Parent %d", i)},
		}
	}
	return rows
}

func TestTransactionList_Defaults(t *testing.T) {
	m := NewTransactionList(themes.Light, export.DefaultOptions(), 0)

	assert.Equal(t, query.DefaultSort(), m.Sort())
	assert.Equal(t, query.DefaultPageSize, m.Page().Size)
	assert.Equal(t, 1, m.Page().TotalPages)
	assert.Contains(t, m.View(), "No transactions found")

	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestTransactionList_Paging(t *testing.T) {
	m := NewTransactionList(themes.Dark, export.DefaultOptions(), 5)
	m.SetRows(listRows(12))

	assert.Equal(t, 3, m.Page().TotalPages)
	m.GoToPage(99)
	assert.Equal(t, 3, m.Page().Page)
	assert.Len(t, m.Page().Rows, 2)
	m.GoToPage(-1)
	assert.Equal(t, 1, m.Page().Page)

	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "ORD-11", selected.CustomOrderID)

	view := m.View()
	assert.Contains(t, view, "Showing 1-5 of 12")
	assert.Contains(t, view, "₹12,000.00", "amounts use the record's currency")
	assert.Contains(t, view, "Parent 11")

	m.GoToPage(3)
	m.SetRows(listRows(12))
	assert.Equal(t, 1, m.Page().Page, "new rows start from the first page")
}

func TestTransactionList_SortCycleWraps(t *testing.T) {
	m := NewTransactionList(themes.Light, export.DefaultOptions(), 5)
	fields := query.SortFields()

	for range fields {
		m.CycleSortField()
	}
	assert.Equal(t, fields[0], m.Sort().Field)
	assert.Equal(t, query.Desc, m.Sort().Direction)
}

func TestThemes(t *testing.T) {
	dark, ok := themes.Get("DARK")
	assert.True(t, ok)
	assert.True(t, dark.IsDark())

	light, ok := themes.Get("sepia")
	assert.False(t, ok)
	assert.False(t, light.IsDark())

	assert.Equal(t, themes.Dark.Name, themes.ForMode(true).Name)
	assert.Equal(t, themes.Light.StatusError, themes.Light.StatusStyle(model.StatusFailed))
	assert.Equal(t, themes.Light.StatusSuccess, themes.Light.StatusStyle(model.StatusCompleted))
	assert.Equal(t, themes.Light.StatusPending, themes.Light.StatusStyle(model.Status("mystery")))
}
