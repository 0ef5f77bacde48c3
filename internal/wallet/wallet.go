// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Signer – внешний кошелёк. Знает свой адрес и подписывает транзакции;
// приватный ключ наружу не отдаёт.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Wallet – локальный кошелёк на ключевой паре, для CLI и тестов.
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

var _ Signer = (*Wallet)(nil)

// NewWallet создаёт кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	return FromPrivateKey(solana.PrivateKey(privateKeyBytes)), nil
}

// LoadKeygenFile читает JSON-файл ключа в формате solana-keygen.
func LoadKeygenFile(path string) (*Wallet, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	return FromPrivateKey(key), nil
}

// Open загружает кошелёк из файла ключа или, если путь пуст, из base58-ключа.
func Open(keypairPath, privateKeyBase58 string) (*Wallet, error) {
	switch {
	case keypairPath != "":
		return LoadKeygenFile(keypairPath)
	case privateKeyBase58 != "":
		return NewWallet(privateKeyBase58)
	default:
		return nil, errors.New("no wallet configured: set keypair_path or private_key")
	}
}

// FromPrivateKey оборачивает готовый ключ.
func FromPrivateKey(key solana.PrivateKey) *Wallet {
	return &Wallet{privateKey: key, publicKey: key.PublicKey()}
}

// Generate создаёт кошелёк со случайным ключом.
func Generate() (*Wallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return FromPrivateKey(key), nil
}

// PublicKey возвращает адрес кошелька.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// SignTransaction подписывает свой слот транзакции, не трогая остальные подписи.
func (w *Wallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return PartialSign(tx, w.privateKey)
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.publicKey.String()
}
