// internal/ui/style/palette.go
package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/oyevasu/spl-token-studio/internal/domain"
)

var (
	// Primary colors
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // In flight / warnings
	Green   = lipgloss.Color("#2AFFAA") // Confirmed
	Red     = lipgloss.Color("#FF5555") // Failed
	Blue    = lipgloss.Color("#3B82F6") // Info / links
	Purple  = lipgloss.Color("#8B5CF6") // Outcome unknown

	// Base colors
	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color
	Unknown   lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,
		Unknown:   Purple,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}

// StatusColor picks the color an operation is drawn in. A failure whose
// ledger outcome is unknown gets its own color so it is never read as a
// plain failure.
func (p Palette) StatusColor(status domain.Status, outcome domain.Outcome) lipgloss.Color {
	switch status {
	case domain.StatusConfirmed:
		return p.Success
	case domain.StatusFailed:
		if outcome == domain.OutcomeUnknown {
			return p.Unknown
		}
		return p.Error
	case domain.StatusIdle:
		return p.TextMuted
	default:
		return p.Warning
	}
}

// StatusBadge renders a short colored label for an operation status.
func StatusBadge(status domain.Status, outcome domain.Outcome) string {
	label := string(status)
	if status == domain.StatusFailed && outcome == domain.OutcomeUnknown {
		label = "unknown"
	}
	return lipgloss.NewStyle().
		Foreground(DefaultPalette().StatusColor(status, outcome)).
		Bold(true).
		Render(label)
}
