// internal/ui/screen/logs.go
package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"

	"github.com/oyevasu/spl-token-studio/internal/logger"
	"github.com/oyevasu/spl-token-studio/internal/ui"
	"github.com/oyevasu/spl-token-studio/internal/ui/component"
	"github.com/oyevasu/spl-token-studio/internal/ui/router"
	"github.com/oyevasu/spl-token-studio/internal/ui/style"
)

// logsShown bounds how many buffered entries the log view renders.
const logsShown = 500

// LogsScreen shows the in-memory log buffer with a minimum level filter.
type LogsScreen struct {
	svc    *ui.Services
	keyMap ui.KeyMap
	width  int
	height int

	viewport viewport.Model
	helpBar  *component.HelpBar
	minLevel zapcore.Level
	shown    int
	follow   bool
}

// NewLogsScreen creates the log viewer
func NewLogsScreen(svc *ui.Services) *LogsScreen {
	keyMap := ui.DefaultKeyMap()
	s := &LogsScreen{
		svc:      svc,
		keyMap:   keyMap,
		viewport: viewport.New(80, 20),
		helpBar:  component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs)),
		minLevel: zapcore.DebugLevel,
		follow:   true,
	}
	s.reload()
	return s
}

func (s *LogsScreen) Init() tea.Cmd {
	s.reload()
	return nil
}

func (s *LogsScreen) Route() ui.Route {
	return ui.RouteLogs
}

// Update handles scrolling, level filters and periodic reloads
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.FilterAll), key.Matches(msg, s.keyMap.FilterDebug):
			s.setLevel(zapcore.DebugLevel)
			return s, nil
		case key.Matches(msg, s.keyMap.FilterInfo):
			s.setLevel(zapcore.InfoLevel)
			return s, nil
		case key.Matches(msg, s.keyMap.FilterWarn):
			s.setLevel(zapcore.WarnLevel)
			return s, nil
		case key.Matches(msg, s.keyMap.FilterError):
			s.setLevel(zapcore.ErrorLevel)
			return s, nil
		}
	case ClockMsg, ui.OperationMsg:
		s.reload()
		return s, nil
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	s.follow = s.viewport.AtBottom()
	return s, cmd
}

func (s *LogsScreen) View() string {
	title := fmt.Sprintf("Logs (%s and above, %d entries)", strings.ToLower(s.minLevel.CapitalString()), s.shown)
	return lipgloss.JoinVertical(lipgloss.Left,
		style.Panel(title, s.viewport.View(), s.width, true),
		s.helpBar.View(),
	)
}

func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.Width = max(width-6, 20)
	s.viewport.Height = max(height-8, 5)
	s.helpBar.SetWidth(width)
	s.reload()
}

func (s *LogsScreen) setLevel(level zapcore.Level) {
	s.minLevel = level
	s.follow = true
	s.reload()
}

func (s *LogsScreen) reload() {
	if s.svc.Logs == nil {
		s.viewport.SetContent(style.MutedStyle.Render("Logging to the terminal is disabled"))
		return
	}

	entries := s.svc.Logs.GetRecentLogs(logsShown)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if entryLevel(e) < s.minLevel {
			continue
		}
		lines = append(lines, renderEntry(e))
	}
	s.shown = len(lines)

	if len(lines) == 0 {
		s.viewport.SetContent(style.MutedStyle.Render("No log entries"))
		return
	}
	s.viewport.SetContent(strings.Join(lines, "\n"))
	if s.follow {
		s.viewport.GotoBottom()
	}
}

func entryLevel(e logger.LogEntry) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(e.Level)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func renderEntry(e logger.LogEntry) string {
	level := entryLevel(e)
	label := fmt.Sprintf("%-5s", level.CapitalString())
	switch {
	case level >= zapcore.ErrorLevel:
		label = style.ErrorStyle.Render(label)
	case level == zapcore.WarnLevel:
		label = style.WarningStyle.Render(label)
	case level == zapcore.DebugLevel:
		label = style.MutedStyle.Render(label)
	default:
		label = style.SuccessStyle.Render(label)
	}

	line := fmt.Sprintf("%s %s %s", style.MutedStyle.Render(e.Timestamp.Local().Format("15:04:05")), label, e.Pretty())
	if e.Logger != "" {
		line += style.MutedStyle.Render("  [" + e.Logger + "]")
	}
	return line
}
