// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound возвращается, когда аккаунт отсутствует в леджере.
var ErrAccountNotFound = errors.New("account not found")

// IsAccountNotFoundError сообщает, что аккаунт отсутствует. Текст ошибки не
// учитывается: "Method not found" от RPC не означает отсутствие аккаунта.
func IsAccountNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, rpc.ErrNotFound)
}

// TransactionOptions определяет опции для отправки транзакций.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// TokenAmount – сырой баланс токен-аккаунта в базовых единицах.
type TokenAmount struct {
	Amount   uint64
	Decimals uint8
}

// TokenHolding описывает один токен-аккаунт владельца.
type TokenHolding struct {
	Account  solana.PublicKey
	Mint     solana.PublicKey
	Owner    solana.PublicKey
	Amount   uint64
	Decimals uint8
}

// SignatureInfo – запись истории транзакций адреса.
type SignatureInfo struct {
	Signature          solana.Signature
	Slot               uint64
	BlockTime          *time.Time
	Err                interface{}
	Memo               string
	ConfirmationStatus rpc.ConfirmationStatusType
}

// Client определяет интерфейс леджера, которым пользуются все компоненты.
type Client interface {
	// Получить последний blockhash.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Минимальный баланс для освобождения аккаунта от ренты.
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
	// Получить информацию об аккаунте. Отсутствующий аккаунт – ErrAccountNotFound.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	// Прочитать и декодировать mint-аккаунт.
	GetMint(ctx context.Context, mint solana.PublicKey) (*token.Mint, error)
	// Отправить транзакцию с опциями.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// Получить статусы подписей транзакций.
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	// Получить баланс аккаунта в лампортах.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Баланс одного токен-аккаунта.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (TokenAmount, error)
	// Все токен-аккаунты владельца.
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]TokenHolding, error)
	// Последние подписи для адреса, новые первыми.
	GetSignaturesForAddress(ctx context.Context, address solana.PublicKey, limit int) ([]SignatureInfo, error)
	// Запросить airdrop SOL (только devnet/testnet).
	RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error)
}
