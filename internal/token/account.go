// internal/token/account.go
package token

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolution – ассоциированный токен-аккаунт пары (owner, mint) и факт его существования.
type Resolution struct {
	Address solana.PublicKey
	Owner   solana.PublicKey
	Mint    solana.PublicKey
	Existed bool
}

// Pair – владелец и mint, для которых нужен токен-аккаунт.
type Pair struct {
	Owner solana.PublicKey
	Mint  solana.PublicKey
}

// Resolver находит ATA и проверяет его наличие в леджере.
type Resolver struct {
	client blockchain.Client
	logger *zap.Logger
}

// NewResolver создаёт Resolver поверх клиента леджера.
func NewResolver(client blockchain.Client, logger *zap.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: logger.Named("account-resolver"),
	}
}

// Derive вычисляет адрес ATA без обращения к сети.
func Derive(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, domain.Wrap(domain.KindAccountResolutionFailed, err,
			"derive token account for owner %s mint %s", owner, mint)
	}
	return ata, nil
}

// Resolve вычисляет ATA и проверяет его существование.
// Ошибки леджера возвращаются как LedgerUnavailable без повторов.
func (r *Resolver) Resolve(ctx context.Context, owner, mint solana.PublicKey) (Resolution, error) {
	ata, err := Derive(owner, mint)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Address: ata, Owner: owner, Mint: mint}

	info, err := r.client.GetAccountInfo(ctx, ata)
	switch {
	case err == nil:
	case blockchain.IsAccountNotFoundError(err):
		r.logger.Debug("Token account not found",
			zap.String("owner", owner.String()),
			zap.String("mint", mint.String()),
			zap.String("ata", ata.String()))
		return res, nil
	case ctx.Err() != nil:
		return Resolution{}, domain.Wrap(domain.KindCanceled, ctx.Err(), "resolve token account %s", ata)
	default:
		return Resolution{}, domain.Wrap(domain.KindLedgerUnavailable, err, "check token account %s", ata)
	}

	if info.Value != nil && !info.Value.Owner.Equals(solana.TokenProgramID) {
		return Resolution{}, domain.Errorf(domain.KindAccountResolutionFailed,
			"account %s exists but is owned by %s, not the token program", ata, info.Value.Owner)
	}

	res.Existed = true
	return res, nil
}

// ResolveMany разрешает несколько пар параллельно; одинаковые пары проверяются один раз.
func (r *Resolver) ResolveMany(ctx context.Context, pairs ...Pair) ([]Resolution, error) {
	unique := make([]Pair, 0, len(pairs))
	index := make(map[Pair]int, len(pairs))
	for _, p := range pairs {
		if _, ok := index[p]; ok {
			continue
		}
		index[p] = len(unique)
		unique = append(unique, p)
	}

	resolved := make([]Resolution, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range unique {
		g.Go(func() error {
			res, err := r.Resolve(gctx, p.Owner, p.Mint)
			if err != nil {
				return err
			}
			resolved[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Resolution, len(pairs))
	for i, p := range pairs {
		out[i] = resolved[index[p]]
	}
	return out, nil
}
