// internal/ui/screen/dashboard.go
package screen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"

	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/ui"
	"github.com/oyevasu/spl-token-studio/internal/ui/component"
	"github.com/oyevasu/spl-token-studio/internal/ui/router"
	"github.com/oyevasu/spl-token-studio/internal/ui/style"
)

// recentOperations is how many operations the dashboard lists.
const recentOperations = 5

// DashboardScreen shows balances, recent transactions and operations.
type DashboardScreen struct {
	svc    *ui.Services
	width  int
	height int
	keyMap ui.KeyMap

	header     *component.StatusHeader
	tokens     *component.Table
	history    *component.Table
	operations *component.Table
	helpBar    *component.HelpBar

	notice string
}

// NewDashboardScreen creates the dashboard
func NewDashboardScreen(svc *ui.Services) *DashboardScreen {
	keyMap := ui.DefaultKeyMap()

	header := component.NewStatusHeader(svc.Tokens.WalletAddress().String(), string(svc.Tokens.Cluster()))
	header.SetPollInterval(svc.PollInterval)

	d := &DashboardScreen{
		svc:    svc,
		keyMap: keyMap,
		header: header,
		tokens: component.NewTable(
			component.TableColumn{Header: "Mint", Width: 44, Align: lipgloss.Left},
			component.TableColumn{Header: "Balance", Width: 20, Align: lipgloss.Right},
			component.TableColumn{Header: "Dec", Width: 3, Align: lipgloss.Right},
		).SetEmptyText("No token accounts"),
		history: component.NewTable(
			component.TableColumn{Header: "Signature", Width: 20, Align: lipgloss.Left},
			component.TableColumn{Header: "Slot", Width: 10, Align: lipgloss.Right},
			component.TableColumn{Header: "Status", Width: 10, Align: lipgloss.Left},
			component.TableColumn{Header: "Time", Width: 8, Align: lipgloss.Left},
		).SetEmptyText("No transactions yet"),
		operations: component.NewTable(
			component.TableColumn{Header: "Started", Width: 8, Align: lipgloss.Left},
			component.TableColumn{Header: "Kind", Width: 7, Align: lipgloss.Left},
			component.TableColumn{Header: "Status", Width: 18, Align: lipgloss.Left},
			component.TableColumn{Header: "Detail", Width: 40, Align: lipgloss.Left},
		).SetEmptyText("No operations in this session"),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteDashboard)),
	}
	d.refresh()
	return d
}

// Init initializes the dashboard
func (d *DashboardScreen) Init() tea.Cmd {
	d.refresh()
	return nil
}

// Route returns the dashboard route
func (d *DashboardScreen) Route() ui.Route {
	return ui.RouteDashboard
}

// Update handles dashboard keys and data messages
func (d *DashboardScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, d.keyMap.Quit):
			return d, tea.Quit
		case key.Matches(msg, d.keyMap.CreateToken):
			return d, ui.Navigate(ui.RouteCreateToken)
		case key.Matches(msg, d.keyMap.MintToken):
			return d, ui.Navigate(ui.RouteMintToken)
		case key.Matches(msg, d.keyMap.SendToken):
			return d, ui.Navigate(ui.RouteSendToken)
		case key.Matches(msg, d.keyMap.Airdrop):
			if d.svc.Tokens.Cluster().SupportsAirdrop() {
				return d, ui.Navigate(ui.RouteAirdrop)
			}
			d.notice = fmt.Sprintf("Airdrops are not available on %s", d.svc.Tokens.Cluster())
		case key.Matches(msg, d.keyMap.Operations):
			return d, ui.Navigate(ui.RouteOperations)
		case key.Matches(msg, d.keyMap.Logs):
			return d, ui.Navigate(ui.RouteLogs)
		case key.Matches(msg, d.keyMap.Refresh):
			if d.svc.Refresh != nil {
				d.svc.Refresh()
				d.notice = "Refreshing…"
			}
		}

	case ui.BalancesMsg, ui.HistoryMsg, ui.OperationMsg, ClockMsg:
		if _, ok := msg.(ui.BalancesMsg); ok {
			d.notice = ""
		}
		d.refresh()
	}

	return d, nil
}

// View renders the dashboard
func (d *DashboardScreen) View() string {
	if d.width == 0 {
		return "Loading..."
	}

	half := d.width / 2
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		style.Panel("Tokens", d.tokens.View(), half, false),
		style.Panel("Recent transactions", d.history.View(), d.width-half, false),
	)

	sections := []string{
		d.header.View(),
		top,
		style.Panel("Operations", d.operations.View(), d.width, false),
	}
	if d.notice != "" {
		sections = append(sections, style.WarningStyle.Render(d.notice))
	}
	sections = append(sections, d.helpBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize sets the screen dimensions
func (d *DashboardScreen) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.header.SetWidth(width)
	d.helpBar.SetWidth(width)
}

// refresh rebuilds the tables from the UI cache.
func (d *DashboardScreen) refresh() {
	cache := d.svc.Cache

	if snap, ok := cache.Balances(); ok {
		d.header.SetBalance(snap.SOL, snap.FetchedAt)
		rows := make([][]string, 0, len(snap.Tokens))
		for _, t := range snap.Tokens {
			rows = append(rows, []string{t.Mint.String(), t.Display, strconv.Itoa(int(t.Decimals))})
		}
		d.tokens.SetRows(rows)
	}

	if snap, ok := cache.History(); ok {
		rows := make([][]string, 0, len(snap.Entries))
		for _, e := range snap.Entries {
			status := e.Status
			if e.Failed() {
				status = "failed"
			}
			when := "-"
			if e.BlockTime != nil {
				when = e.BlockTime.Local().Format("15:04:05")
			}
			rows = append(rows, []string{e.Signature.String(), strconv.FormatUint(e.Slot, 10), status, when})
		}
		d.history.SetRows(rows)
		for i, e := range snap.Entries {
			if e.Failed() {
				d.history.SetRowStyle(i, style.ErrorStyle)
			}
		}
	}

	ops := cache.Operations()
	if len(ops) > recentOperations {
		ops = ops[:recentOperations]
	}
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []string{
			op.StartedAt.Local().Format("15:04:05"),
			string(op.Kind),
			statusText(op),
			operationDetail(op),
		})
	}
	d.operations.SetRows(rows)
}

// statusText is the plain status label; an unknown outcome reads as such.
func statusText(op domain.PendingOperation) string {
	if op.Status == domain.StatusFailed && op.Outcome == domain.OutcomeUnknown {
		return "unknown (check)"
	}
	return string(op.Status)
}

// operationDetail is the signature once known, otherwise the error.
func operationDetail(op domain.PendingOperation) string {
	if op.Status == domain.StatusFailed && op.Message != "" {
		if op.Outcome == domain.OutcomeUnknown && op.Signature != (solana.Signature{}) {
			return op.Signature.String()
		}
		return op.Message
	}
	if op.Signature != (solana.Signature{}) {
		return op.Signature.String()
	}
	var parts []string
	for _, k := range []string{"symbol", "amount", "mint"} {
		if v, ok := op.Params[k]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
