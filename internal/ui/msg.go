// internal/ui/msg.go
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/poller"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// OperationMsg carries a status change of a token operation.
type OperationMsg struct {
	Operation domain.PendingOperation
}

// BalancesMsg carries a new balance snapshot.
type BalancesMsg struct {
	Snapshot poller.BalanceSnapshot
}

// HistoryMsg carries a new history snapshot.
type HistoryMsg struct {
	Snapshot poller.HistorySnapshot
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// ListenBus returns a tea.Cmd that waits for the next message on ch.
// It returns nil when ch is closed.
func ListenBus(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteDashboard Route = iota
	RouteCreateToken
	RouteMintToken
	RouteSendToken
	RouteAirdrop
	RouteOperations
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteDashboard:
		return "dashboard"
	case RouteCreateToken:
		return "create_token"
	case RouteMintToken:
		return "mint_token"
	case RouteSendToken:
		return "send_token"
	case RouteAirdrop:
		return "airdrop"
	case RouteOperations:
		return "operations"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// Navigate returns a command that routes to r.
func Navigate(r Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: r}
	}
}
