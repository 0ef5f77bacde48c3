// internal/token/builder.go
package token

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	tokenprogram "github.com/gagliardetto/solana-go/programs/token"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/programs/computebudget"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"go.uber.org/zap"
)

// UnsignedTransaction – собранная, но ещё не подписанная транзакция.
type UnsignedTransaction struct {
	Kind      domain.OperationKind
	Tx        *solana.Transaction
	FeePayer  solana.PublicKey
	Blockhash solana.Hash
	// LocalSigners подписывают до кошелька; для create это эфемерный ключ mint.
	LocalSigners    []solana.PrivateKey
	Mint            solana.PublicKey
	Amount          uint64
	CreatedAccounts []solana.PublicKey
}

// MintParams – вход BuildMint.
type MintParams struct {
	Owner       solana.PublicKey
	Mint        MintInfo
	Destination Resolution
	Amount      uint64
}

// SendParams – вход BuildSend. ExpectedDecimals сверяется с Mint.Decimals.
type SendParams struct {
	Owner            solana.PublicKey
	Mint             MintInfo
	Source           Resolution
	Destination      Resolution
	Amount           uint64
	ExpectedDecimals uint8
}

// Builder собирает транзакции трёх операций. Порядок инструкций задаётся
// здесь: создание аккаунтов всегда идёт перед инструкциями, которые их используют.
type Builder struct {
	client blockchain.Client
	logger *zap.Logger
	budget computebudget.Config
}

// Option настраивает Builder.
type Option func(*Builder)

// WithComputeBudget добавляет инструкции лимита и цены compute units.
func WithComputeBudget(cfg computebudget.Config) Option {
	return func(b *Builder) { b.budget = cfg }
}

// NewBuilder создаёт билдер поверх клиента леджера.
func NewBuilder(client blockchain.Client, logger *zap.Logger, opts ...Option) *Builder {
	b := &Builder{
		client: client,
		logger: logger.Named("tx-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildCreate создаёт новый mint с decimals; authority и freeze authority – owner.
func (b *Builder) BuildCreate(ctx context.Context, owner solana.PublicKey, decimals uint8) (*UnsignedTransaction, error) {
	if err := ValidateDecimals(int(decimals)); err != nil {
		return nil, err
	}

	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, err, "generate mint keypair")
	}
	mint := mintKey.PublicKey()

	rent, err := b.client.GetMinimumBalanceForRentExemption(ctx, MintAccountSize)
	if err != nil {
		return nil, ledgerError(ctx, err, "rent exemption for mint account")
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent,
			MintAccountSize,
			solana.TokenProgramID,
			owner,
			mint,
		).Build(),
		tokenprogram.NewInitializeMintInstruction(
			decimals,
			owner,
			owner,
			mint,
			solana.SysVarRentPubkey,
		).Build(),
	}

	utx := &UnsignedTransaction{
		Kind:            domain.OperationCreate,
		Mint:            mint,
		LocalSigners:    []solana.PrivateKey{mintKey},
		CreatedAccounts: []solana.PublicKey{mint},
	}
	return b.finish(ctx, utx, owner, instructions)
}

// BuildMint выпускает Amount базовых единиц в Destination.
func (b *Builder) BuildMint(ctx context.Context, p MintParams) (*UnsignedTransaction, error) {
	if !p.Mint.HasAuthority(p.Owner) {
		return nil, domain.Errorf(domain.KindMintAuthorityMismatch,
			"wallet %s is not the mint authority of %s", p.Owner, p.Mint.Address)
	}
	if err := checkResolution(p.Destination, p.Mint.Address); err != nil {
		return nil, err
	}

	instructions, created := ensureAccounts(p.Owner, p.Destination)
	instructions = append(instructions,
		tokenprogram.NewMintToInstruction(
			p.Amount,
			p.Mint.Address,
			p.Destination.Address,
			p.Owner,
			nil,
		).Build(),
	)

	utx := &UnsignedTransaction{
		Kind:            domain.OperationMint,
		Mint:            p.Mint.Address,
		Amount:          p.Amount,
		CreatedAccounts: created,
	}
	return b.finish(ctx, utx, p.Owner, instructions)
}

// BuildSend переводит Amount из Source в Destination через TransferChecked.
func (b *Builder) BuildSend(ctx context.Context, p SendParams) (*UnsignedTransaction, error) {
	if err := p.Mint.CheckDecimals(p.ExpectedDecimals); err != nil {
		return nil, err
	}
	if err := checkResolution(p.Source, p.Mint.Address); err != nil {
		return nil, err
	}
	if err := checkResolution(p.Destination, p.Mint.Address); err != nil {
		return nil, err
	}
	if !p.Source.Existed {
		return nil, domain.Errorf(domain.KindAccountResolutionFailed,
			"source token account %s does not exist", p.Source.Address)
	}

	instructions, created := ensureAccounts(p.Owner, p.Destination)
	instructions = append(instructions,
		tokenprogram.NewTransferCheckedInstruction(
			p.Amount,
			p.Mint.Decimals,
			p.Source.Address,
			p.Mint.Address,
			p.Destination.Address,
			p.Owner,
			nil,
		).Build(),
	)

	utx := &UnsignedTransaction{
		Kind:            domain.OperationSend,
		Mint:            p.Mint.Address,
		Amount:          p.Amount,
		CreatedAccounts: created,
	}
	return b.finish(ctx, utx, p.Owner, instructions)
}

// finish добавляет compute budget, берёт blockhash последним шагом и собирает транзакцию.
func (b *Builder) finish(ctx context.Context, utx *UnsignedTransaction, payer solana.PublicKey, instructions []solana.Instruction) (*UnsignedTransaction, error) {
	if b.budget.Enabled() {
		budget, err := computebudget.BuildInstructions(b.budget)
		if err != nil {
			return nil, domain.Wrap(domain.KindInternal, err, "compute budget")
		}
		instructions = append(budget, instructions...)
	}

	blockhash, err := b.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, ledgerError(ctx, err, "recent blockhash")
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, err, "assemble %s transaction", utx.Kind)
	}

	utx.Tx = tx
	utx.FeePayer = payer
	utx.Blockhash = blockhash

	b.logger.Debug("Transaction built",
		zap.String("kind", string(utx.Kind)),
		zap.String("fee_payer", payer.String()),
		zap.String("mint", utx.Mint.String()),
		zap.Int("instructions", len(instructions)),
		zap.Int("created_accounts", len(utx.CreatedAccounts)))
	return utx, nil
}

// ensureAccounts возвращает инструкции создания для отсутствующих аккаунтов, по одной на адрес.
func ensureAccounts(payer solana.PublicKey, resolutions ...Resolution) ([]solana.Instruction, []solana.PublicKey) {
	var (
		instructions []solana.Instruction
		created      []solana.PublicKey
	)
	seen := make(map[solana.PublicKey]struct{}, len(resolutions))
	for _, r := range resolutions {
		if r.Existed {
			continue
		}
		if _, ok := seen[r.Address]; ok {
			continue
		}
		seen[r.Address] = struct{}{}
		instructions = append(instructions, NewCreateAssociatedAccountIdempotentInstruction(payer, r.Owner, r.Mint, r.Address))
		created = append(created, r.Address)
	}
	return instructions, created
}

func checkResolution(r Resolution, mint solana.PublicKey) error {
	if r.Address.IsZero() {
		return domain.Errorf(domain.KindAccountResolutionFailed, "token account for mint %s was not resolved", mint)
	}
	if !r.Mint.Equals(mint) {
		return domain.Errorf(domain.KindAccountResolutionFailed,
			"token account %s belongs to mint %s, not %s", r.Address, r.Mint, mint)
	}
	return nil
}

func ledgerError(ctx context.Context, err error, what string) error {
	if ctx.Err() != nil {
		return domain.Wrap(domain.KindCanceled, ctx.Err(), "%s", what)
	}
	return domain.Wrap(domain.KindLedgerUnavailable, err, "%s", what)
}

// String – краткое описание для логов.
func (u *UnsignedTransaction) String() string {
	return fmt.Sprintf("%s(mint=%s amount=%d payer=%s)", u.Kind, u.Mint, u.Amount, u.FeePayer)
}
