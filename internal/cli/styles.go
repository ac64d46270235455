// Package cli provides styled terminal output and interactive prompts.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/Veraticus/schoolpay/internal/format"
	"github.com/Veraticus/schoolpay/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#7C3AED")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#10B981")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#F59E0B")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#EF4444")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#3B82F6")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#737373")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#404040")).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	SchoolIcon  = "🏫"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the school icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(SchoolIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	))
}

// statusColors maps statuses to badge colours. Unknown statuses are plain.
var statusColors = map[model.Status]*color.Color{
	model.StatusSuccess:    color.New(color.FgBlack, color.BgGreen),
	model.StatusCompleted:  color.New(color.FgBlack, color.BgGreen),
	model.StatusPending:    color.New(color.FgBlack, color.BgYellow),
	model.StatusProcessing: color.New(color.FgBlack, color.BgCyan),
	model.StatusFailed:     color.New(color.FgWhite, color.BgRed),
	model.StatusCancelled:  color.New(color.FgWhite, color.BgRed),
	model.StatusRefunded:   color.New(color.FgWhite, color.BgBlue),
}

// StatusBadge renders the status label as a coloured badge. Colour is
// dropped automatically when output is not a terminal or NO_COLOR is set.
func StatusBadge(status model.Status) string {
	label := " " + format.Status(status) + " "
	if c, ok := statusColors[status]; ok {
		return c.Sprint(label)
	}
	return label
}

// StatusText renders the status label in its badge foreground colour, for
// table cells where a background would be too loud.
func StatusText(status model.Status) string {
	label := format.Status(status)
	switch status {
	case model.StatusSuccess, model.StatusCompleted:
		return color.GreenString(label)
	case model.StatusFailed, model.StatusCancelled:
		return color.RedString(label)
	case model.StatusPending, model.StatusProcessing:
		return color.YellowString(label)
	case model.StatusRefunded:
		return color.BlueString(label)
	default:
		return label
	}
}
