// internal/ui/component/status_header.go
package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/oyevasu/spl-token-studio/internal/ui/style"
)

// LedgerStatus describes how fresh the last balance poll is.
type LedgerStatus struct {
	LastPoll time.Time
	Interval time.Duration
}

// Stale reports whether no poll has landed for three intervals.
func (s LedgerStatus) Stale(now time.Time) bool {
	if s.LastPoll.IsZero() {
		return true
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return now.Sub(s.LastPoll) > 3*interval
}

// StatusHeader is the one-line header with wallet, cluster and balance.
type StatusHeader struct {
	wallet  string
	cluster string
	sol     string
	ledger  LedgerStatus
	width   int
	now     func() time.Time
	style   statusHeaderStyle
}

type statusHeaderStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	wallet    lipgloss.Style
	cluster   lipgloss.Style
	good      lipgloss.Style
	bad       lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader(wallet, cluster string) *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		wallet:  wallet,
		cluster: cluster,
		sol:     "…",
		now:     time.Now,
		style: statusHeaderStyle{
			container: lipgloss.NewStyle().
				Foreground(palette.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true),

			wallet: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			cluster: lipgloss.NewStyle().
				Foreground(palette.Secondary).
				Bold(true),

			good: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			bad: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),
		},
	}
}

// SetBalance updates the SOL balance and the time of the poll that produced it.
func (sh *StatusHeader) SetBalance(sol string, polledAt time.Time) {
	sh.sol = sol
	sh.ledger.LastPoll = polledAt
}

// SetPollInterval sets the interval used to detect a stale ledger.
func (sh *StatusHeader) SetPollInterval(interval time.Duration) {
	sh.ledger.Interval = interval
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	if width > 4 {
		sh.style.container = sh.style.container.Width(width - 2)
	}
}

// View renders the status header
func (sh *StatusHeader) View() string {
	wallet := sh.wallet
	if sh.width > 0 && sh.width < 100 {
		wallet = ShortAddress(wallet)
	}

	content := lipgloss.JoinHorizontal(
		lipgloss.Left,
		sh.style.title.Render("🪙 SPL Token Studio"),
		" | ",
		sh.style.cluster.Render(sh.cluster),
		" | ",
		sh.style.wallet.Render("Wallet: "+wallet),
		" | ",
		fmt.Sprintf("%s SOL", sh.sol),
		" | ",
		sh.renderLedger(),
	)

	return sh.style.container.Render(content)
}

func (sh *StatusHeader) renderLedger() string {
	now := sh.now()
	if sh.ledger.Stale(now) {
		return sh.style.bad.Render("🔴 ledger: no data")
	}
	age := now.Sub(sh.ledger.LastPoll).Round(time.Second)
	return sh.style.good.Render(fmt.Sprintf("🟢 ledger: %s ago", age))
}
