package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/schoolpay/internal/common"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/query"
	"github.com/Veraticus/schoolpay/internal/tui/components"
	"github.com/Veraticus/schoolpay/internal/tui/themes"
)

// Model holds the transaction browser state.
type Model struct {
	ctx        context.Context
	theme      themes.Theme
	lastError  error
	generation *query.Generation
	list       components.TransactionListModel
	spinner    spinner.Model
	help       help.Model
	keymap     KeyMap
	config     Config
	notice     string
	pagination model.Pagination
	width      int
	height     int
	loading    bool
	quitting   bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	theme := cfg.theme()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(theme.Primary)

	list := components.NewTransactionList(theme, cfg.Render, cfg.PageSize)
	list.Resize(cfg.Width, listHeight(cfg.Height))

	return Model{
		ctx:        ctx,
		theme:      theme,
		generation: &query.Generation{},
		list:       list,
		spinner:    s,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		config:     cfg,
		width:      cfg.Width,
		height:     cfg.Height,
		loading:    true,
	}
}

// listHeight leaves room for the title, banner and help lines.
func listHeight(height int) int {
	return max(5, height-6)
}

// Init loads the stored theme and starts the first fetch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchTransactions(m.generation.Next())}
	if m.config.Themes != nil && !m.config.darkSet {
		cmds = append(cmds, m.loadTheme())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.Resize(msg.Width, listHeight(msg.Height))
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transactionsLoadedMsg:
		return m.handleLoaded(msg), nil

	case themeLoadedMsg:
		if msg.err != nil {
			slog.Warn("Failed to load theme preference", "error", msg.err)
			return m, nil
		}
		m.setTheme(msg.dark)
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.lastError = fmt.Errorf("failed to save theme: %w", msg.err)
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.lastError = fmt.Errorf("export failed: %w", msg.err)
			return m, nil
		}
		m.lastError = nil
		m.notice = fmt.Sprintf("Exported %d transactions to %s", msg.count, msg.destination)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKey routes keys to the application or the list. While the search box
// has focus every key except ctrl+c belongs to it.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if !m.list.Searching() {
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Refresh):
			return m.startFetch()
		case key.Matches(msg, m.keymap.Theme):
			dark := !m.theme.IsDark()
			m.setTheme(dark)
			return m, m.saveTheme(dark)
		case key.Matches(msg, m.keymap.Export):
			m.notice = ""
			return m, m.exportView()
		case key.Matches(msg, m.keymap.ToggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// startFetch tags a new fetch; results of earlier fetches will be dropped.
func (m Model) startFetch() (Model, tea.Cmd) {
	m.loading = true
	m.lastError = nil
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, m.fetchTransactions(m.generation.Next()))
}

// handleLoaded applies a fetch result unless a newer fetch has started.
func (m Model) handleLoaded(msg transactionsLoadedMsg) Model {
	if !m.generation.IsCurrent(msg.generation) {
		slog.Debug("Dropping stale fetch result", "generation", msg.generation)
		return m
	}
	m.loading = false

	if msg.err != nil {
		m.lastError = msg.err
		return m
	}

	m.lastError = nil
	m.pagination = msg.pagination
	m.list.SetRows(msg.rows)
	return m
}

func (m *Model) setTheme(dark bool) {
	m.theme = themes.ForMode(dark)
	m.spinner.Style = m.spinner.Style.Foreground(m.theme.Primary)
	m.list.SetTheme(m.theme)
}

// Loading reports whether a fetch is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Err returns the error shown in the banner, if any.
func (m Model) Err() error {
	return m.lastError
}

// errorText is the banner text for the last error.
func (m Model) errorText() string {
	if m.lastError == nil {
		return ""
	}
	return common.Message(m.lastError)
}
