// internal/ui/recovery_test.go
package ui

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockModel is a test UI model
type mockModel struct {
	panicOnUpdate bool
	panicOnView   bool
	updateCount   int32
}

func (m *mockModel) Init() tea.Cmd { return nil }

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	atomic.AddInt32(&m.updateCount, 1)
	if m.panicOnUpdate {
		panic("update panic test")
	}
	return m, tea.Quit
}

func (m *mockModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "Test UI"
}

func newTestHandler(run func(tea.Model, []tea.ProgramOption) error) *RecoveryHandler {
	h := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{}, []tea.ProgramOption{tea.WithoutSignalHandler()}
	})
	h.restartDelay = time.Millisecond
	h.run = run
	return h
}

func TestRecoveryHandlerRestartsAfterPanic(t *testing.T) {
	var sessions int32
	h := newTestHandler(func(tea.Model, []tea.ProgramOption) error {
		if atomic.AddInt32(&sessions, 1) == 1 {
			panic("first session crashes")
		}
		return nil
	})

	require.NoError(t, h.RunWithRecovery(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&sessions))
	assert.Equal(t, 1, h.GetRestartCount())
}

func TestRecoveryHandlerGivesUp(t *testing.T) {
	h := newTestHandler(func(tea.Model, []tea.ProgramOption) error {
		return errors.New("terminal gone")
	})
	h.maxRestarts = 2

	err := h.RunWithRecovery(context.Background())
	assert.ErrorIs(t, err, ErrTooManyRestarts)
	assert.Equal(t, 3, h.GetRestartCount())
}

func TestRecoveryHandlerStopsOnContext(t *testing.T) {
	h := newTestHandler(func(tea.Model, []tea.ProgramOption) error {
		panic("always")
	})
	h.restartDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.RunWithRecovery(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunWithRecovery did not return after cancel")
	}
}

// Operations keep running while the UI crashes and restarts.
func TestUIIsolation(t *testing.T) {
	var work int32
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				atomic.AddInt32(&work, 1)
				time.Sleep(time.Millisecond)
			}
		}
	}()

	h := newTestHandler(func(tea.Model, []tea.ProgramOption) error {
		time.Sleep(10 * time.Millisecond)
		panic("crash")
	})
	h.maxRestarts = 3

	err := h.RunWithRecovery(context.Background())
	close(stop)

	assert.ErrorIs(t, err, ErrTooManyRestarts)
	assert.Greater(t, atomic.LoadInt32(&work), int32(10))
}

func TestSafeUIWrapper(t *testing.T) {
	model := &mockModel{}
	wrapper := NewSafeUIWrapper(model, zap.NewNop())

	assert.Nil(t, wrapper.Init())
	assert.Equal(t, "Test UI", wrapper.View())

	next, cmd := wrapper.Update(nil)
	assert.Same(t, wrapper, next)
	assert.NotNil(t, cmd)

	model.panicOnUpdate = true
	assert.NotPanics(t, func() {
		next, cmd = wrapper.Update(nil)
	})
	assert.Same(t, wrapper, next)
	assert.Nil(t, cmd)

	model.panicOnView = true
	assert.Equal(t, "UI Error: View crashed. Press Ctrl+C to exit.", wrapper.View())
}
