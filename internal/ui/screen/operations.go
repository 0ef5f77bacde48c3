// internal/ui/screen/operations.go
package screen

import (
	"fmt"
	"sort"
	"strings"
	"time"

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

// OperationsScreen lists every operation of the session with details of the
// selected one. Finished operations can be dismissed.
type OperationsScreen struct {
	svc    *ui.Services
	keyMap ui.KeyMap
	width  int
	height int

	table   *component.Table
	helpBar *component.HelpBar
	ops     []domain.PendingOperation
	notice  string
}

// NewOperationsScreen creates the operations list
func NewOperationsScreen(svc *ui.Services) *OperationsScreen {
	keyMap := ui.DefaultKeyMap()
	s := &OperationsScreen{
		svc:    svc,
		keyMap: keyMap,
		table: component.NewTable(
			component.TableColumn{Header: "Started", Width: 8, Align: lipgloss.Left},
			component.TableColumn{Header: "Kind", Width: 7, Align: lipgloss.Left},
			component.TableColumn{Header: "Status", Width: 18, Align: lipgloss.Left},
			component.TableColumn{Header: "Age", Width: 8, Align: lipgloss.Right},
			component.TableColumn{Header: "Detail", Width: 36, Align: lipgloss.Left},
		).SetSelectable(true).SetEmptyText("No operations in this session"),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteOperations)),
	}
	s.refresh(time.Now())
	return s
}

func (s *OperationsScreen) Init() tea.Cmd {
	s.refresh(time.Now())
	return nil
}

func (s *OperationsScreen) Route() ui.Route {
	return ui.RouteOperations
}

// Update handles selection and dismissal
func (s *OperationsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
		case key.Matches(msg, s.keyMap.Forget):
			s.forgetSelected()
		}
	case ui.OperationMsg:
		s.refresh(time.Now())
	case ClockMsg:
		s.refresh(msg.Time)
	}
	return s, nil
}

func (s *OperationsScreen) View() string {
	sections := []string{
		style.Panel("Operations", s.table.View(), s.width, true),
	}
	if op, ok := s.selected(); ok {
		sections = append(sections, style.Panel("Details", s.detailView(op), s.width, false))
	}
	if s.notice != "" {
		sections = append(sections, style.WarningStyle.Render(s.notice))
	}
	sections = append(sections, s.helpBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s *OperationsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
}

func (s *OperationsScreen) selected() (domain.PendingOperation, bool) {
	idx := s.table.SelectedRow()
	if idx < 0 || idx >= len(s.ops) {
		return domain.PendingOperation{}, false
	}
	return s.ops[idx], true
}

func (s *OperationsScreen) forgetSelected() {
	op, ok := s.selected()
	if !ok {
		return
	}
	if !op.Status.Terminal() {
		s.notice = "Only finished operations can be dismissed"
		return
	}
	s.svc.Tokens.Forget(op.ID)
	s.svc.Cache.RemoveOperation(op.ID)
	s.notice = ""
	s.refresh(time.Now())
}

func (s *OperationsScreen) refresh(now time.Time) {
	s.ops = s.svc.Cache.Operations()

	rows := make([][]string, 0, len(s.ops))
	for _, op := range s.ops {
		rows = append(rows, []string{
			op.StartedAt.Local().Format("15:04:05"),
			string(op.Kind),
			statusText(op),
			age(now, op.UpdatedAt),
			operationDetail(op),
		})
	}
	s.table.SetRows(rows)

	palette := style.DefaultPalette()
	for i, op := range s.ops {
		s.table.SetRowStyle(i, lipgloss.NewStyle().Foreground(palette.StatusColor(op.Status, op.Outcome)))
	}
}

func (s *OperationsScreen) detailView(op domain.PendingOperation) string {
	lines := []string{
		fmt.Sprintf("%s  %s", style.StatusBadge(op.Status, op.Outcome), op.ID),
	}

	keys := make([]string, 0, len(op.Params))
	for k := range op.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-10s %s", k+":", op.Params[k]))
	}

	if op.Signature != (solana.Signature{}) {
		lines = append(lines,
			"signature: "+op.Signature.String(),
			style.LinkStyle.Render(s.svc.Tokens.ExplorerTxURL(op.Signature)))
	}
	if op.Status == domain.StatusFailed {
		headline := humanKind(op.ErrorKind)
		if op.Outcome == domain.OutcomeUnknown {
			lines = append(lines, style.WarningStyle.Render(headline+": status unknown, check the explorer"))
		} else {
			lines = append(lines, style.ErrorStyle.Render(headline))
		}
		if op.Message != "" {
			lines = append(lines, style.MutedStyle.Render(op.Message))
		}
	}
	return strings.Join(lines, "\n")
}

// age renders how long ago t was, rounded to a readable unit.
func age(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}
