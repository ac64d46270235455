package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/schoolpay/internal/model"
)

// errNoFetcher is reported when the browser has nothing to load from.
var errNoFetcher = errors.New("no transaction source configured")

// fetchTransactions loads one server result set under generation tag.
func (m Model) fetchTransactions(tag uint64) tea.Cmd {
	fetch := m.config.Fetch
	params := m.config.Params
	snapshots := m.config.Snapshots
	parent := m.ctx
	timeout := m.config.Timeout

	return func() tea.Msg {
		if fetch == nil {
			return transactionsLoadedMsg{generation: tag, err: errNoFetcher}
		}

		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		page, err := fetch(ctx, params)
		if err != nil {
			return transactionsLoadedMsg{generation: tag, err: err}
		}
		if page == nil {
			page = &model.TransactionPage{}
		}

		if snapshots != nil {
			if saveErr := snapshots.SaveSnapshot(ctx, params.Key(), page.Transactions); saveErr != nil {
				slog.Warn("Failed to cache fetched transactions", "error", saveErr)
			}
		}

		return transactionsLoadedMsg{
			generation: tag,
			rows:       page.Transactions,
			pagination: page.Pagination,
		}
	}
}

// loadTheme reads the stored dark mode flag.
func (m Model) loadTheme() tea.Cmd {
	store := m.config.Themes
	parent := m.ctx
	timeout := m.config.Timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		dark, err := store.DarkMode(ctx)
		return themeLoadedMsg{dark: dark, err: err}
	}
}

// saveTheme persists the dark mode flag.
func (m Model) saveTheme(dark bool) tea.Cmd {
	store := m.config.Themes
	if store == nil {
		return nil
	}
	parent := m.ctx
	timeout := m.config.Timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		return themeSavedMsg{err: store.SetDarkMode(ctx, dark)}
	}
}

// exportView writes the derived rows through the configured exporter.
func (m Model) exportView() tea.Cmd {
	exportFn := m.config.Export
	rows := m.list.Derived()
	parent := m.ctx
	timeout := m.config.Timeout

	return func() tea.Msg {
		if exportFn == nil {
			return exportDoneMsg{err: errors.New("export is not configured")}
		}
		if len(rows) == 0 {
			slog.Warn("Exporting an empty view")
		}

		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		dest, err := exportFn(ctx, rows)
		return exportDoneMsg{destination: dest, count: len(rows), err: err}
	}
}
