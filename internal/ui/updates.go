// internal/ui/updates.go
package ui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// UpdateSender feeds messages from background goroutines into the program
// without blocking them. Messages are dropped when the channel is full.
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
	closeOnce      sync.Once
}

// NewUpdateSender creates a new non-blocking update sender
func NewUpdateSender(msgChan chan tea.Msg, logger *zap.Logger) *UpdateSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	us := &UpdateSender{
		msgChan:       msgChan,
		logger:        logger.Named("ui_updates"),
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	go us.logStats()

	return us
}

// Messages returns the channel the program listens on.
func (us *UpdateSender) Messages() <-chan tea.Msg {
	return us.msgChan
}

// SendUpdate sends a message to UI without blocking
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// SendWithin waits up to timeout for room in the channel. Used for messages
// the UI must not miss, such as a terminal operation status.
func (us *UpdateSender) SendWithin(msg tea.Msg, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
		return true
	case <-us.stopStats:
	case <-timer.C:
	}
	atomic.AddUint64(&us.droppedUpdates, 1)
	return false
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Warn("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender
func (us *UpdateSender) Close() {
	us.closeOnce.Do(func() {
		close(us.stopStats)
	})
}
