// internal/domain/operation.go
package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// OperationKind identifies which of the three token flows an operation runs.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationMint   OperationKind = "mint"
	OperationSend   OperationKind = "send"
	// OperationAirdrop is a devnet-only SOL faucet request.
	OperationAirdrop OperationKind = "airdrop"
)

// Status is the lifecycle state of a PendingOperation.
type Status string

const (
	StatusIdle              Status = "idle"
	StatusAwaitingSignature Status = "awaiting_signature"
	StatusSubmitting        Status = "submitting"
	StatusConfirmed         Status = "confirmed"
	StatusFailed            Status = "failed"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// PendingOperation tracks one user-initiated flow from the form to confirmation.
type PendingOperation struct {
	ID        string
	Kind      OperationKind
	Params    map[string]string
	Status    Status
	Signature solana.Signature
	ErrorKind ErrorKind
	Message   string
	Outcome   Outcome
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewPendingOperation returns an idle operation with a fresh ID.
func NewPendingOperation(kind OperationKind, params map[string]string) *PendingOperation {
	now := time.Now()
	return &PendingOperation{
		ID:        uuid.New().String(),
		Kind:      kind,
		Params:    params,
		Status:    StatusIdle,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (op *PendingOperation) Clone() PendingOperation {
	cp := *op
	if op.Params != nil {
		cp.Params = make(map[string]string, len(op.Params))
		for k, v := range op.Params {
			cp.Params[k] = v
		}
	}
	return cp
}
