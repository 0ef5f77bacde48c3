// internal/ui/bridge.go
package ui

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/oyevasu/spl-token-studio/internal/events"
	"github.com/oyevasu/spl-token-studio/internal/poller"
)

// terminalDeliveryTimeout bounds how long the event dispatcher waits for
// room in the UI channel before dropping a final operation status.
const terminalDeliveryTimeout = 2 * time.Second

// Bridge feeds operation events and poller snapshots into the UI.
type Bridge struct {
	sender *UpdateSender

	mu      sync.Mutex
	cancels []func()
}

// NewBridge creates a bridge that delivers through sender.
func NewBridge(sender *UpdateSender) *Bridge {
	return &Bridge{sender: sender}
}

// Operations forwards every operation event from bus as an OperationMsg.
func (b *Bridge) Operations(bus *events.Bus) {
	sub := bus.SubscribeMany(events.OperationEventTypes, events.HandlerFunc(func(_ context.Context, ev events.Event) error {
		opEvent, ok := ev.(events.OperationEvent)
		if !ok {
			return nil
		}
		msg := OperationMsg{Operation: opEvent.Operation}
		if opEvent.Operation.Status.Terminal() {
			b.sender.SendWithin(msg, terminalDeliveryTimeout)
		} else {
			b.sender.SendUpdate(msg)
		}
		return nil
	}))
	b.add(sub.Unsubscribe)
}

// Balances subscribes to owner's balance feed.
func (b *Bridge) Balances(p *poller.BalancePoller, owner solana.PublicKey) {
	sub := p.Start(owner, func(snap poller.BalanceSnapshot) {
		b.sender.SendUpdate(BalancesMsg{Snapshot: snap})
	})
	b.add(sub.Cancel)
}

// History subscribes to owner's history feed.
func (b *Bridge) History(p *poller.HistoryPoller, owner solana.PublicKey) {
	sub := p.Start(owner, func(snap poller.HistorySnapshot) {
		b.sender.SendUpdate(HistoryMsg{Snapshot: snap})
	})
	b.add(sub.Cancel)
}

// Close cancels every subscription made through the bridge.
func (b *Bridge) Close() {
	b.mu.Lock()
	cancels := b.cancels
	b.cancels = nil
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (b *Bridge) add(cancel func()) {
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()
}
