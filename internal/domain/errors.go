// internal/domain/errors.go
package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrorKind classifies every failure a token operation can surface to the UI.
type ErrorKind string

const (
	KindNone                    ErrorKind = ""
	KindInvalidAmount           ErrorKind = "InvalidAmount"
	KindInvalidDecimals         ErrorKind = "InvalidDecimals"
	KindInvalidAddress          ErrorKind = "InvalidAddress"
	KindDecimalsMismatch        ErrorKind = "DecimalsMismatch"
	KindMintAuthorityMismatch   ErrorKind = "MintAuthorityMismatch"
	KindInsufficientBalance     ErrorKind = "InsufficientBalance"
	KindAccountResolutionFailed ErrorKind = "AccountResolutionFailed"
	KindLedgerUnavailable       ErrorKind = "LedgerUnavailable"
	KindWalletUnavailable       ErrorKind = "WalletUnavailable"
	KindSigningDenied           ErrorKind = "SigningDenied"
	KindTransactionFailed       ErrorKind = "TransactionFailed"
	KindConfirmationTimeout     ErrorKind = "ConfirmationTimeout"
	KindConfirmationAbandoned   ErrorKind = "ConfirmationAbandoned"
	KindCanceled                ErrorKind = "Canceled"
	KindReplayRefused           ErrorKind = "ReplayRefused"
	KindAirdropUnavailable      ErrorKind = "AirdropUnavailable"
	KindInternal                ErrorKind = "Internal"
)

// Outcome tells the UI whether the ledger state is known after a failure.
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeFailed  Outcome = "failed"
	OutcomeUnknown Outcome = "unknown"
)

// Outcome returns OutcomeUnknown for kinds where the transaction may still land.
func (k ErrorKind) Outcome() Outcome {
	switch k {
	case KindNone:
		return OutcomeNone
	case KindConfirmationTimeout, KindConfirmationAbandoned:
		return OutcomeUnknown
	default:
		return OutcomeFailed
	}
}

// Error is the typed error carried through every layer of the module.
type Error struct {
	Kind    ErrorKind
	Message string
	// Signature is set once a transaction has been submitted.
	Signature solana.Signature
	Err       error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to a lower-level error.
func Wrap(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithSignature returns a copy of e that carries sig.
func (e *Error) WithSignature(sig solana.Signature) *Error {
	cp := *e
	cp.Signature = sig
	return &cp
}

// KindOf extracts the ErrorKind from err. Plain context errors map to Canceled,
// anything else without a kind is Internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindInternal
}

// SignatureOf returns the signature recorded on err, if any.
func SignatureOf(err error) (solana.Signature, bool) {
	var de *Error
	if errors.As(err, &de) && de.Signature != (solana.Signature{}) {
		return de.Signature, true
	}
	return solana.Signature{}, false
}
