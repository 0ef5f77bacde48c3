// internal/token/mint.go
package token

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/domain"
)

// MintAccountSize – размер mint-аккаунта SPL Token в байтах.
const MintAccountSize = 82

// MintInfo – то, что нужно операциям из mint-аккаунта.
type MintInfo struct {
	Address   solana.PublicKey
	Decimals  uint8
	Supply    uint64
	Authority *solana.PublicKey
}

// HasAuthority сообщает, может ли owner выпускать токены этого mint.
func (m MintInfo) HasAuthority(owner solana.PublicKey) bool {
	return m.Authority != nil && m.Authority.Equals(owner)
}

// CheckDecimals – DecimalsMismatch, если expected не совпадает с decimals в леджере.
func (m MintInfo) CheckDecimals(expected uint8) error {
	if expected != m.Decimals {
		return domain.Errorf(domain.KindDecimalsMismatch,
			"expected %d decimals but mint %s has %d", expected, m.Address, m.Decimals)
	}
	return nil
}

// ReadMint читает mint из леджера.
// Отсутствующий или неинициализированный mint – AccountResolutionFailed.
func ReadMint(ctx context.Context, client blockchain.Client, mint solana.PublicKey) (MintInfo, error) {
	m, err := client.GetMint(ctx, mint)
	switch {
	case err == nil:
	case blockchain.IsAccountNotFoundError(err):
		return MintInfo{}, domain.Wrap(domain.KindAccountResolutionFailed, err, "mint %s does not exist", mint)
	case ctx.Err() != nil:
		return MintInfo{}, domain.Wrap(domain.KindCanceled, ctx.Err(), "read mint %s", mint)
	default:
		return MintInfo{}, domain.Wrap(domain.KindLedgerUnavailable, err, "read mint %s", mint)
	}

	if !m.IsInitialized {
		return MintInfo{}, domain.Errorf(domain.KindAccountResolutionFailed, "mint %s is not initialized", mint)
	}

	return MintInfo{
		Address:   mint,
		Decimals:  m.Decimals,
		Supply:    m.Supply,
		Authority: m.MintAuthority,
	}, nil
}
