// Package components contains the reusable Bubble Tea views of the TUI.
package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/format"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/query"
	"github.com/Veraticus/schoolpay/internal/tui/themes"
)

// ListMode represents the current mode of the list.
type ListMode int

// List modes.
const (
	ModeNormal ListMode = iota
	ModeSearch
)

// TransactionListModel shows the filtered, sorted and paginated view of the
// fetched transactions.
type TransactionListModel struct {
	theme       themes.Theme
	opts        export.Options
	sorter      *query.Sorter
	filter      query.Filter
	sort        query.Sort
	rows        []model.Transaction
	derived     []model.Transaction
	page        query.Page
	searchInput textinput.Model
	table       table.Model
	mode        ListMode
	pageNum     int
	pageSize    int
	width       int
	height      int
}

// NewTransactionList creates a list showing the newest transactions first.
func NewTransactionList(theme themes.Theme, opts export.Options, pageSize int) TransactionListModel {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)

	searchInput := textinput.New()
	searchInput.Placeholder = "Search order id, customer, reference..."
	searchInput.CharLimit = 64

	m := TransactionListModel{
		theme:       theme,
		opts:        opts,
		sorter:      query.NewSorter(query.DefaultLanguage),
		sort:        query.DefaultSort(),
		table:       t,
		searchInput: searchInput,
		pageNum:     1,
		pageSize:    pageSize,
		width:       100,
		height:      pageSize + 4,
	}
	m.SetTheme(theme)
	m.updateColumnWidths()
	m.refresh()
	return m
}

// SetRows replaces the fetched rows and re-derives the view. The current
// filter and sort are kept; the page resets to the first.
func (m *TransactionListModel) SetRows(rows []model.Transaction) {
	m.rows = rows
	m.pageNum = 1
	m.refresh()
}

// SetTheme restyles the table.
func (m *TransactionListModel) SetTheme(theme themes.Theme) {
	m.theme = theme
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = theme.Selected
	s.Cell = s.Cell.Foreground(theme.Foreground)
	m.table.SetStyles(s)
}

// Derived returns every row that passes the filter, in sort order. This is
// the "current view" that export writes.
func (m TransactionListModel) Derived() []model.Transaction {
	return m.derived
}

// Page returns the page currently displayed.
func (m TransactionListModel) Page() query.Page {
	return m.page
}

// Filter returns the active filter.
func (m TransactionListModel) Filter() query.Filter {
	return m.filter
}

// Sort returns the active sort.
func (m TransactionListModel) Sort() query.Sort {
	return m.sort
}

// Searching reports whether the search box has focus.
func (m TransactionListModel) Searching() bool {
	return m.mode == ModeSearch
}

// Selected returns the transaction under the cursor.
func (m TransactionListModel) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.page.Rows) {
		return model.Transaction{}, false
	}
	return m.page.Rows[i], true
}

// Update handles messages.
func (m TransactionListModel) Update(msg tea.Msg) (TransactionListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == ModeSearch {
			return m, m.handleSearchMode(msg)
		}
		if m.handleNormalMode(msg) {
			return m, nil
		}
		if msg.String() == "/" {
			m.mode = ModeSearch
			m.searchInput.SetValue(m.filter.Search)
			m.searchInput.CursorEnd()
			return m, m.searchInput.Focus()
		}

	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleNormalMode applies list keys and reports whether the key was consumed.
func (m *TransactionListModel) handleNormalMode(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "s":
		m.CycleSortField()
	case "o":
		m.sort.Direction = m.sort.Direction.Flip()
		m.refresh()
	case "f":
		m.CycleStatus()
	case "n", "right":
		m.GoToPage(m.pageNum + 1)
	case "p", "left":
		m.GoToPage(m.pageNum - 1)
	case "z":
		m.pageSize = query.NextPageSize(m.pageSize)
		m.pageNum = 1
		m.table.SetHeight(m.pageSize)
		m.refresh()
	case "c":
		m.filter = query.Filter{}
		m.pageNum = 1
		m.refresh()
	default:
		return false
	}
	return true
}

// handleSearchMode edits the search box; enter applies, esc cancels.
func (m *TransactionListModel) handleSearchMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.filter.Search = strings.TrimSpace(m.searchInput.Value())
		m.mode = ModeNormal
		m.searchInput.Blur()
		m.pageNum = 1
		m.refresh()
		return nil

	case "esc":
		m.mode = ModeNormal
		m.searchInput.Blur()
		return nil

	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return cmd
	}
}

// CycleSortField moves to the next sortable field. A new field starts
// ascending, except date fields which start with the newest first.
func (m *TransactionListModel) CycleSortField() {
	fields := query.SortFields()
	i := slices.Index(fields, m.sort.Field)
	m.sort.Field = fields[(i+1)%len(fields)]
	m.sort.Direction = query.Asc
	if m.sort.Field == "date" || m.sort.Field == "payment_time" {
		m.sort.Direction = query.Desc
	}
	m.refresh()
}

// CycleStatus steps the status filter through every status and back to all.
func (m *TransactionListModel) CycleStatus() {
	statuses := model.Statuses()
	switch i := slices.Index(statuses, m.filter.Status); {
	case m.filter.Status == "":
		m.filter.Status = statuses[0]
	case i < 0 || i == len(statuses)-1:
		m.filter.Status = ""
	default:
		m.filter.Status = statuses[i+1]
	}
	m.pageNum = 1
	m.refresh()
}

// GoToPage shows page n, clamped into range.
func (m *TransactionListModel) GoToPage(n int) {
	m.pageNum = n
	m.refresh()
}

// refresh recomputes the derived slice and the visible page.
func (m *TransactionListModel) refresh() {
	filtered := query.FilterRows(m.rows, m.filter)
	m.derived = m.sorter.SortRows(filtered, m.sort)
	m.page = query.Paginate(m.derived, m.pageNum, m.pageSize)
	m.pageNum = m.page.Page
	m.table.SetRows(m.buildTableRows())
	if len(m.page.Rows) > 0 {
		m.table.SetCursor(0)
	}
}

// View renders the transaction list.
func (m TransactionListModel) View() string {
	parts := []string{m.renderHeader()}
	if m.mode == ModeSearch {
		parts = append(parts, m.theme.BorderedBox.Render(m.searchInput.View()))
	}
	if m.page.Total == 0 {
		empty := "No transactions found"
		if m.filter.Active() {
			empty += " for the current filters (press c to clear)"
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Muted).Render(empty))
	} else {
		parts = append(parts, m.table.View())
	}
	parts = append(parts, m.renderPager())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader summarizes the active sort and filters.
func (m TransactionListModel) renderHeader() string {
	status := fmt.Sprintf("Sort: %s %s", m.sort.Field, m.sort.Direction)
	if m.filter.Status != "" {
		status += " | Status: " + m.theme.StatusStyle(m.filter.Status).Render(format.Status(m.filter.Status))
	}
	if m.filter.Search != "" {
		status += fmt.Sprintf(" | Search: %q", m.filter.Search)
	}
	return m.theme.Subtitle.Render(status)
}

// renderPager shows the row range and the page selector.
func (m TransactionListModel) renderPager() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d-%d of %d  ", m.page.From, m.page.To, m.page.Total)
	if m.page.HasPrev() {
		b.WriteString("‹ ")
	}
	for _, item := range query.PageWindow(m.page.Page, m.page.TotalPages) {
		switch {
		case item.Ellipsis:
			b.WriteString("… ")
		case item.Page == m.page.Page:
			b.WriteString(m.theme.Bold.Render(fmt.Sprintf("[%d]", item.Page)) + " ")
		default:
			fmt.Fprintf(&b, "%d ", item.Page)
		}
	}
	if m.page.HasNext() {
		b.WriteString("›")
	}
	fmt.Fprintf(&b, "  (%d per page)", m.page.Size)
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(b.String())
}

// buildTableRows renders the visible page as table cells.
func (m TransactionListModel) buildTableRows() []table.Row {
	rows := make([]table.Row, 0, len(m.page.Rows))
	for i := range m.page.Rows {
		txn := &m.page.Rows[i]
		currency := txn.Currency
		if currency == "" {
			currency = m.opts.Currency
		}
		customer := ""
		if txn.Customer != nil {
			customer = txn.Customer.Name
		}
		rows = append(rows, table.Row{
			m.opts.Layouts.Date(txn.Date),
			txn.DisplayID(),
			format.OrNA(txn.SchoolID),
			format.Currency(txn.Amount(), currency),
			format.Status(txn.Status),
			format.PaymentMethod(txn.Method()),
			format.OrNA(customer),
		})
	}
	return rows
}

// Resize updates the component size.
func (m *TransactionListModel) Resize(width, height int) {
	m.width = width
	m.height = height
	// Header, pager and the table's own header take four lines.
	m.table.SetHeight(max(1, min(m.pageSize, height-4)))
	m.updateColumnWidths()
}

// updateColumnWidths adjusts column widths to the available space.
func (m *TransactionListModel) updateColumnWidths() {
	// Borders plus one cell of padding on each side of seven columns.
	availableWidth := max(m.width-18, 60)

	columns := []table.Column{
		{Title: "Date", Width: max(10, availableWidth*12/100)},
		{Title: "Order ID", Width: max(12, availableWidth*18/100)},
		{Title: "School", Width: max(10, availableWidth*14/100)},
		{Title: "Amount", Width: max(12, availableWidth*14/100)},
		{Title: "Status", Width: max(10, availableWidth*11/100)},
		{Title: "Method", Width: max(10, availableWidth*13/100)},
		{Title: "Customer", Width: max(10, availableWidth*18/100)},
	}
	m.table.SetColumns(columns)
}
