// internal/ui/router/router.go
package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/oyevasu/spl-token-studio/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
	Route() ui.Route
}

// BackBlocker is implemented by screens that sometimes must not be left,
// for example while an operation they started is still in flight.
type BackBlocker interface {
	BlocksBack() bool
}

// Router manages navigation between screens using a stack-based approach
type Router struct {
	stack  []Screen
	width  int
	height int
}

// New creates a new router with the initial screen
func New(initialScreen Screen) *Router {
	return &Router{
		stack: []Screen{initialScreen},
	}
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	if current := r.Current(); current != nil {
		return current.Init()
	}
	return nil
}

// Update routes esc to Back and everything else to the current screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		if msg.String() == "esc" && r.CanGoBack() {
			if b, ok := r.Current().(BackBlocker); !ok || !b.BlocksBack() {
				return r.Pop()
			}
		}
	}

	current := r.Current()
	if current == nil {
		return nil
	}
	updated, cmd := current.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the current screen
func (r *Router) View() string {
	if current := r.Current(); current != nil {
		return current.View()
	}
	return "No screen available"
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height

	if current := r.Current(); current != nil {
		current.SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen and re-initializes the one below it.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	r.stack = r.stack[:len(r.stack)-1]

	current := r.Current()
	current.SetSize(r.width, r.height)
	return current.Init()
}

// Replace replaces the current screen with a new one
func (r *Router) Replace(screen Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(screen)
	}

	screen.SetSize(r.width, r.height)
	r.stack[len(r.stack)-1] = screen
	return screen.Init()
}

// PopToRoot removes all screens except the first one
func (r *Router) PopToRoot() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	r.stack = r.stack[:1]
	r.stack[0].SetSize(r.width, r.height)
	return r.stack[0].Init()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}

// CanGoBack returns true if there are screens to go back to
func (r *Router) CanGoBack() bool {
	return len(r.stack) > 1
}
