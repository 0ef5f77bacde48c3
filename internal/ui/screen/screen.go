// internal/ui/screen/screen.go
package screen

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oyevasu/spl-token-studio/internal/ui"
	"github.com/oyevasu/spl-token-studio/internal/ui/router"
)

// clockInterval drives relative times such as "12s ago".
const clockInterval = time.Second

// ClockMsg is the periodic redraw tick shared by screens.
type ClockMsg struct {
	Time time.Time
}

// Clock schedules the next ClockMsg; the app re-arms it on every tick.
func Clock() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return ClockMsg{Time: t}
	})
}

// New builds the screen for route. Unknown routes return nil.
func New(route ui.Route, svc *ui.Services) router.Screen {
	switch route {
	case ui.RouteDashboard:
		return NewDashboardScreen(svc)
	case ui.RouteCreateToken, ui.RouteMintToken, ui.RouteSendToken, ui.RouteAirdrop:
		return NewOperationScreen(route, svc)
	case ui.RouteOperations:
		return NewOperationsScreen(svc)
	case ui.RouteLogs:
		return NewLogsScreen(svc)
	default:
		return nil
	}
}
