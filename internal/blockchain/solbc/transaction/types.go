// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/oyevasu/spl-token-studio/internal/domain"
)

var (
	ErrInvalidBlockhash   = errors.New("invalid blockhash")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrFeePayerMismatch   = errors.New("fee payer is not the connected wallet")
	ErrTransactionFailed  = errors.New("transaction failed on ledger")
	errPending            = errors.New("signature not yet confirmed")
)

// State – этапы жизненного цикла отправки транзакции.
type State string

const (
	StateBuilt             State = "built"
	StateAwaitingSignature State = "awaiting_signature"
	StateSubmitted         State = "submitted"
	StateConfirmed         State = "confirmed"
	StateRejected          State = "rejected"
	StateTimedOut          State = "timed_out"
	StateAbandoned         State = "abandoned"
	StateFailed            State = "failed"
)

// Observer получает каждый переход состояния. Подпись нулевая до отправки.
type Observer func(state State, signature solana.Signature)

// Config – параметры отправки и ожидания подтверждения.
type Config struct {
	SkipPreflight bool
	// Commitment – уровень preflight и целевой уровень подтверждения.
	Commitment      rpc.CommitmentType
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsed ограничивает общее время ожидания; 0 – только MaxAttempts.
	MaxElapsed time.Duration
}

// DefaultConfig – значения по умолчанию для devnet.
func DefaultConfig() Config {
	return Config{
		Commitment:      rpc.CommitmentConfirmed,
		MaxAttempts:     30,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     4 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Commitment == "" {
		c.Commitment = def.Commitment
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = def.InitialInterval
	}
	if c.MaxInterval < c.InitialInterval {
		c.MaxInterval = c.InitialInterval
	}
	return c
}

// Status – последний известный статус подписи.
type Status struct {
	Signature          solana.Signature
	Status             string
	Confirmations      uint64
	Slot               uint64
	Error              string
	ConfirmationStatus rpc.ConfirmationStatusType
	Timestamp          time.Time
}

// Receipt – результат успешно подтверждённой операции.
type Receipt struct {
	Kind               domain.OperationKind
	Signature          solana.Signature
	Slot               uint64
	ConfirmationStatus rpc.ConfirmationStatusType
	Mint               solana.PublicKey
	Amount             uint64
	CreatedAccounts    []solana.PublicKey
	ConfirmedAt        time.Time
}
