// internal/domain/result.go
package domain

import "github.com/gagliardetto/solana-go"

// Result is what every public token operation returns. Either OK is set and
// Value holds the payload, or ErrorKind and Message describe the failure.
type Result[T any] struct {
	OK        bool
	Value     T
	ErrorKind ErrorKind
	Message   string
	Outcome   Outcome
	// Signature is present when a failed operation had already been submitted.
	Signature solana.Signature
	// OperationID links the result to its PendingOperation, when tracked.
	OperationID string
}

// NewResult folds a (value, error) pair into a Result.
func NewResult[T any](v T, err error) Result[T] {
	if err == nil {
		return Result[T]{OK: true, Value: v, Outcome: OutcomeNone}
	}
	kind := KindOf(err)
	res := Result[T]{
		ErrorKind: kind,
		Message:   err.Error(),
		Outcome:   kind.Outcome(),
	}
	if sig, ok := SignatureOf(err); ok {
		res.Signature = sig
	}
	return res
}

// Err converts a failed Result back into an *Error, or nil when OK.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Kind: r.ErrorKind, Message: r.Message, Signature: r.Signature}
}
