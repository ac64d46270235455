package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	parts := []string{m.renderTitle()}

	if text := m.errorText(); text != "" {
		parts = append(parts, m.theme.Banner.Render(text+"  (r to retry)"))
	}
	if m.notice != "" {
		parts = append(parts, m.theme.StatusSuccess.Render(m.notice))
	}

	if m.loading && m.list.Page().Total == 0 {
		parts = append(parts, m.renderLoading())
	} else {
		parts = append(parts, m.list.View())
	}

	parts = append(parts, m.help.View(m.keymap))

	return m.theme.BorderedBox.
		Width(max(0, m.width-2)).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderTitle shows the heading, the server totals and the fetch spinner.
func (m Model) renderTitle() string {
	title := m.theme.Title.Render(m.config.Title)
	if m.pagination.Total > 0 {
		title += m.theme.Subtitle.Render(fmt.Sprintf("  %d on server, page %d of %d",
			m.pagination.Total, m.pagination.Page, max(1, m.pagination.TotalPages)))
	}
	if m.loading {
		title += " " + m.spinner.View()
	}
	return title
}

// renderLoading renders the placeholder shown before the first result arrives.
func (m Model) renderLoading() string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		m.spinner.View(),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(" Loading transactions..."),
	)
}
