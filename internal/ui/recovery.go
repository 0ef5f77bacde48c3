// internal/ui/recovery.go
package ui

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ErrTooManyRestarts is returned when the UI keeps crashing.
var ErrTooManyRestarts = errors.New("UI crashed too many times")

// RecoveryHandler restarts the UI after a panic. Operations started from the
// UI keep running in their own goroutines while it restarts.
type RecoveryHandler struct {
	logger       *zap.Logger
	restartDelay time.Duration
	maxRestarts  int
	restartCount int
	mu           sync.Mutex
	program      *tea.Program
	createUI     func() (tea.Model, []tea.ProgramOption)
	// run executes one UI session; tests replace it.
	run func(model tea.Model, opts []tea.ProgramOption) error
}

// NewRecoveryHandler creates a new recovery handler
func NewRecoveryHandler(logger *zap.Logger, createUI func() (tea.Model, []tea.ProgramOption)) *RecoveryHandler {
	rh := &RecoveryHandler{
		logger:       logger.Named("ui_recovery"),
		restartDelay: 2 * time.Second,
		maxRestarts:  5,
		createUI:     createUI,
	}
	rh.run = rh.runProgram
	return rh
}

// RunWithRecovery runs the UI until it exits normally, ctx is done, or it
// has crashed more than maxRestarts times.
func (rh *RecoveryHandler) RunWithRecovery(ctx context.Context) error {
	for {
		err := rh.runUI()
		if err == nil {
			return nil
		}

		rh.mu.Lock()
		rh.restartCount++
		count := rh.restartCount
		rh.mu.Unlock()

		if count > rh.maxRestarts {
			return fmt.Errorf("%w (%d): %w", ErrTooManyRestarts, rh.maxRestarts, err)
		}

		rh.logger.Error("UI crashed, will restart",
			zap.Error(err),
			zap.Int("restart_count", count),
			zap.Duration("delay", rh.restartDelay))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(rh.restartDelay):
		}
	}
}

func (rh *RecoveryHandler) runUI() (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			err = fmt.Errorf("UI panic: %v", r)
			rh.logger.Error("UI panic recovered",
				zap.Any("panic", r),
				zap.ByteString("stack", stack))
		}
	}()

	model, opts := rh.createUI()
	return rh.run(model, opts)
}

func (rh *RecoveryHandler) runProgram(model tea.Model, opts []tea.ProgramOption) error {
	program := tea.NewProgram(model, opts...)
	rh.mu.Lock()
	rh.program = program
	rh.mu.Unlock()

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// Stop quits the running UI session.
func (rh *RecoveryHandler) Stop() {
	rh.mu.Lock()
	defer rh.mu.Unlock()

	if rh.program != nil {
		rh.program.Quit()
		rh.program = nil
	}
}

// GetRestartCount returns the number of restarts
func (rh *RecoveryHandler) GetRestartCount() int {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return rh.restartCount
}

// SafeUIWrapper wraps a model so that a panic in Update or View degrades
// the screen instead of killing the program.
type SafeUIWrapper struct {
	model  tea.Model
	logger *zap.Logger
}

// NewSafeUIWrapper creates a new safe UI wrapper
func NewSafeUIWrapper(model tea.Model, logger *zap.Logger) *SafeUIWrapper {
	return &SafeUIWrapper{
		model:  model,
		logger: logger,
	}
}

// Init wraps the Init method with panic recovery
func (sw *SafeUIWrapper) Init() (cmd tea.Cmd) {
	defer sw.recoverFromPanic("Init", &cmd)
	return sw.model.Init()
}

// Update wraps the Update method with panic recovery
func (sw *SafeUIWrapper) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	model = sw
	defer sw.recoverFromPanic("Update", &cmd)
	next, cmd := sw.model.Update(msg)
	if next != nil {
		sw.model = next
	}
	return sw, cmd
}

// View wraps the View method with panic recovery
func (sw *SafeUIWrapper) View() (view string) {
	defer func() {
		if r := recover(); r != nil {
			sw.logger.Error("View panic recovered",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			view = "UI Error: View crashed. Press Ctrl+C to exit."
		}
	}()
	return sw.model.View()
}

func (sw *SafeUIWrapper) recoverFromPanic(method string, cmd *tea.Cmd) {
	if r := recover(); r != nil {
		sw.logger.Error("UI method panic recovered",
			zap.String("method", method),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()))
		*cmd = nil
	}
}
