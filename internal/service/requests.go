// internal/service/requests.go
package service

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/oyevasu/spl-token-studio/internal/domain"
)

// DefaultDecimals is used when the create form leaves decimals empty.
const DefaultDecimals = 9

// CreateTokenRequest is the raw input of the create form. Name and Symbol are
// labels kept with the operation; they are not written on-ledger.
type CreateTokenRequest struct {
	Name     string
	Symbol   string
	Decimals string
}

// MintTokenRequest mints Amount (display units) of Mint to the wallet.
type MintTokenRequest struct {
	Mint   string
	Amount string
}

// SendTokenRequest sends Amount of Mint to Recipient. Decimals, when set, must
// match the mint; the send form passes the value it listed the token with.
type SendTokenRequest struct {
	Mint      string
	Recipient string
	Amount    string
	Decimals  *uint8
}

// CreatedToken is the value of a successful CreateToken.
type CreatedToken struct {
	Mint        solana.PublicKey
	Name        string
	Symbol      string
	Decimals    uint8
	Signature   solana.Signature
	Slot        uint64
	ExplorerURL string
	MintURL     string
}

// Receipt is the value of a successful MintToken or SendToken.
type Receipt struct {
	Kind      domain.OperationKind
	Signature solana.Signature
	Slot      uint64
	Mint      solana.PublicKey
	// Recipient is the owner credited; the wallet itself for mint.
	Recipient       solana.PublicKey
	Account         solana.PublicKey
	Amount          uint64
	Display         string
	CreatedAccounts []solana.PublicKey
	ExplorerURL     string
	ConfirmedAt     time.Time
}

// Airdrop is the value of a successful RequestAirdrop.
type Airdrop struct {
	Signature   solana.Signature
	Lamports    uint64
	SOL         string
	ExplorerURL string
}
