// internal/ui/keymap.go
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding

	// Dashboard actions
	CreateToken key.Binding
	MintToken   key.Binding
	SendToken   key.Binding
	Airdrop     key.Binding
	Operations  key.Binding
	Logs        key.Binding
	Refresh     key.Binding

	// Forms
	Submit key.Binding

	// Operations
	Forget key.Binding

	// Logs
	FilterAll   key.Binding
	FilterDebug key.Binding
	FilterInfo  key.Binding
	FilterWarn  key.Binding
	FilterError key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),

		CreateToken: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "create"),
		),
		MintToken: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mint"),
		),
		SendToken: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send"),
		),
		Airdrop: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "airdrop"),
		),
		Operations: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "operations"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l", "f12"),
			key.WithHelp("l", "logs"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next/submit"),
		),

		Forget: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "dismiss"),
		),

		FilterAll: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "all"),
		),
		FilterDebug: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "debug+"),
		),
		FilterInfo: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "info+"),
		),
		FilterWarn: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "warn+"),
		),
		FilterError: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "error"),
		),
	}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteDashboard:
		return []key.Binding{k.CreateToken, k.MintToken, k.SendToken, k.Airdrop, k.Operations, k.Logs, k.Refresh, k.Quit}
	case RouteCreateToken, RouteMintToken, RouteSendToken, RouteAirdrop:
		return []key.Binding{k.Tab, k.ShiftTab, k.Submit, k.Back}
	case RouteOperations:
		return []key.Binding{k.Up, k.Down, k.Forget, k.Back}
	case RouteLogs:
		return []key.Binding{k.Up, k.Down, k.FilterAll, k.FilterInfo, k.FilterWarn, k.FilterError, k.Back}
	default:
		return []key.Binding{k.Back, k.Quit}
	}
}
