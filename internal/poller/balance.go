// internal/poller/balance.go
package poller

import (
	"context"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/token"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// solDecimals is the number of lamports per SOL as a power of ten.
const solDecimals = 9

// TokenBalance is one token account row of a BalanceSnapshot.
type TokenBalance struct {
	Mint     solana.PublicKey
	Account  solana.PublicKey
	Amount   uint64
	Decimals uint8
	Display  string
}

// BalanceSnapshot is the owner's SOL and token balances at FetchedAt.
type BalanceSnapshot struct {
	Owner     solana.PublicKey
	Lamports  uint64
	SOL       string
	Tokens    []TokenBalance
	FetchedAt time.Time
}

// Sendable returns the token rows with a positive balance.
func (s BalanceSnapshot) Sendable() []TokenBalance {
	out := make([]TokenBalance, 0, len(s.Tokens))
	for _, t := range s.Tokens {
		if t.Amount > 0 {
			out = append(out, t)
		}
	}
	return out
}

// BalancePoller polls SOL and token balances.
type BalancePoller struct {
	*Poller[BalanceSnapshot]
}

// NewBalancePoller creates a balance poller on the shared scheduler.
func NewBalancePoller(client blockchain.Client, scheduler *Scheduler, logger *zap.Logger) *BalancePoller {
	return &BalancePoller{
		Poller: New[BalanceSnapshot]("balance-poller", scheduler, func(ctx context.Context, owner solana.PublicKey) (BalanceSnapshot, error) {
			return FetchBalances(ctx, client, owner)
		}, logger),
	}
}

// FetchBalances reads SOL and token holdings concurrently.
func FetchBalances(ctx context.Context, client blockchain.Client, owner solana.PublicKey) (BalanceSnapshot, error) {
	var (
		lamports uint64
		holdings []blockchain.TokenHolding
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lamports, err = client.GetBalance(gctx, owner, rpc.CommitmentConfirmed)
		return err
	})
	g.Go(func() error {
		var err error
		holdings, err = client.GetTokenAccountsByOwner(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return BalanceSnapshot{}, err
	}

	tokens := make([]TokenBalance, 0, len(holdings))
	for _, h := range holdings {
		display := token.ToDecimal(h.Amount, h.Decimals).String()
		tokens = append(tokens, TokenBalance{
			Mint:     h.Mint,
			Account:  h.Account,
			Amount:   h.Amount,
			Decimals: h.Decimals,
			Display:  display,
		})
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Mint.String() < tokens[j].Mint.String()
	})

	return BalanceSnapshot{
		Owner:     owner,
		Lamports:  lamports,
		SOL:       token.ToDecimal(lamports, solDecimals).String(),
		Tokens:    tokens,
		FetchedAt: time.Now(),
	}, nil
}
