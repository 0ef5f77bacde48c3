// internal/events/types.go
package events

import (
	"time"

	"github.com/oyevasu/spl-token-studio/internal/domain"
)

// EventType represents the type of event.
type EventType string

const (
	// Operation events
	OperationStarted   EventType = "operation.started"
	OperationUpdated   EventType = "operation.updated"
	OperationCompleted EventType = "operation.completed"
	OperationFailed    EventType = "operation.failed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// OperationEvent carries a copy of a PendingOperation after a status change.
type OperationEvent struct {
	BaseEvent
	Operation domain.PendingOperation
}

// NewOperationEvent picks the event type from the operation status.
func NewOperationEvent(op domain.PendingOperation) OperationEvent {
	typ := OperationUpdated
	switch op.Status {
	case domain.StatusIdle:
		typ = OperationStarted
	case domain.StatusConfirmed:
		typ = OperationCompleted
	case domain.StatusFailed:
		typ = OperationFailed
	}
	return OperationEvent{
		BaseEvent: BaseEvent{EventType: typ, EventTime: op.UpdatedAt},
		Operation: op,
	}
}

// OperationEventTypes lists every type an OperationEvent can have.
var OperationEventTypes = []EventType{OperationStarted, OperationUpdated, OperationCompleted, OperationFailed}
