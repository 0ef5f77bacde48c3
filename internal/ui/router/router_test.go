// internal/ui/router/router_test.go
package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/oyevasu/spl-token-studio/internal/ui"
)

type fakeScreen struct {
	route   ui.Route
	inits   int
	updates []tea.Msg
	width   int
	blocks  bool
}

func (s *fakeScreen) Init() tea.Cmd { s.inits++; return nil }

func (s *fakeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.updates = append(s.updates, msg)
	return s, nil
}

func (s *fakeScreen) View() string              { return s.route.String() }
func (s *fakeScreen) SetSize(width, height int) { s.width = width }
func (s *fakeScreen) Route() ui.Route           { return s.route }
func (s *fakeScreen) BlocksBack() bool          { return s.blocks }

func TestRouterStack(t *testing.T) {
	root := &fakeScreen{route: ui.RouteDashboard}
	r := New(root)
	r.SetSize(120, 40)

	form := &fakeScreen{route: ui.RouteMintToken}
	r.Push(form)
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, 120, form.width)
	assert.Equal(t, "mint_token", r.View())

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, 1, root.inits)
	assert.False(t, r.CanGoBack())

	// esc on the root screen reaches the screen itself
	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, root.updates, 1)
}

func TestRouterBackBlocked(t *testing.T) {
	r := New(&fakeScreen{route: ui.RouteDashboard})
	busy := &fakeScreen{route: ui.RouteSendToken, blocks: true}
	r.Push(busy)

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 2, r.Depth())
	assert.Len(t, busy.updates, 1)

	busy.blocks = false
	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
}

func TestRouterReplaceAndPopToRoot(t *testing.T) {
	r := New(&fakeScreen{route: ui.RouteDashboard})
	r.Push(&fakeScreen{route: ui.RouteOperations})
	r.Replace(&fakeScreen{route: ui.RouteLogs})
	assert.Equal(t, ui.RouteLogs, r.Current().Route())
	assert.Equal(t, 2, r.Depth())

	r.PopToRoot()
	assert.Equal(t, ui.RouteDashboard, r.Current().Route())
}
