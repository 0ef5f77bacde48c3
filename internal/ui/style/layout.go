// internal/ui/style/layout.go
package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Margin(0, 0, 1, 0)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(1, 2).
			Margin(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(1, 2).
				Margin(0, 1)
)

// Text styles
var (
	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning)

	LinkStyle = lipgloss.NewStyle().
			Foreground(palette.Info).
			Underline(true)
)

// Panel renders content in a titled panel, highlighted when active.
func Panel(title, content string, width int, active bool) string {
	s := PanelStyle
	if active {
		s = ActivePanelStyle
	}
	if width > 4 {
		s = s.Width(width - 4)
	}
	return s.Render(lipgloss.JoinVertical(lipgloss.Left, SubHeaderStyle.Render(title), content))
}
