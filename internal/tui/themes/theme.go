// Package themes holds the light and dark palettes used by the TUI.
package themes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/schoolpay/internal/model"
)

// Theme names.
const (
	NameDark  = "dark"
	NameLight = "light"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Highlighted   lipgloss.Style
	BorderedBox   lipgloss.Style
	Banner        lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	Name          string
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Background    lipgloss.Color
	Error         lipgloss.Color
}

type palette struct {
	name, primary, success, warning, errColor, info   string
	background, foreground, border, muted, subtle, hl string
}

func build(p palette) Theme {
	fg := lipgloss.Color(p.foreground)
	return Theme{
		Name:       p.name,
		Primary:    lipgloss.Color(p.primary),
		Muted:      lipgloss.Color(p.muted),
		Border:     lipgloss.Color(p.border),
		Foreground: fg,
		Background: lipgloss.Color(p.background),
		Error:      lipgloss.Color(p.errColor),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.subtle)),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.primary)).
			Foreground(lipgloss.Color(p.background)).
			Bold(true),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color(p.hl)).
			Foreground(fg),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.errColor)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(p.errColor)).
			PaddingLeft(1),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.success)).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.warning)).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.errColor)).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.info)).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)).
			Italic(true),
	}
}

// Dark is the default dark theme.
var Dark = build(palette{
	name:       NameDark,
	primary:    "#7c3aed",
	success:    "#10b981",
	warning:    "#f59e0b",
	errColor:   "#ef4444",
	info:       "#3b82f6",
	background: "#1a1a1a",
	foreground: "#fafafa",
	border:     "#404040",
	muted:      "#737373",
	subtle:     "#a3a3a3",
	hl:         "#404040",
})

// Light is the light theme.
var Light = build(palette{
	name:       NameLight,
	primary:    "#6d28d9",
	success:    "#047857",
	warning:    "#b45309",
	errColor:   "#b91c1c",
	info:       "#1d4ed8",
	background: "#ffffff",
	foreground: "#171717",
	border:     "#d4d4d4",
	muted:      "#737373",
	subtle:     "#525252",
	hl:         "#e5e5e5",
})

// ForMode returns the dark or light theme.
func ForMode(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}

// Get returns a theme by name. Unknown names report false.
func Get(name string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameDark:
		return Dark, true
	case NameLight:
		return Light, true
	default:
		return Light, false
	}
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool {
	return t.Name == NameDark
}

// StatusStyle returns the style used to render a status badge.
func (t Theme) StatusStyle(status model.Status) lipgloss.Style {
	switch status {
	case model.StatusSuccess, model.StatusCompleted:
		return t.StatusSuccess
	case model.StatusFailed, model.StatusCancelled:
		return t.StatusError
	case model.StatusRefunded:
		return t.StatusInfo
	case model.StatusProcessing:
		return t.StatusWarning
	default:
		return t.StatusPending
	}
}
