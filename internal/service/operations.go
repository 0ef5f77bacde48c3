// internal/service/operations.go
package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc/transaction"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/poller"
	"github.com/oyevasu/spl-token-studio/internal/token"
)

const lamportsDecimals = 9

// CreateToken creates a new mint with the wallet as mint and freeze authority.
func (s *Service) CreateToken(ctx context.Context, req CreateTokenRequest) domain.Result[CreatedToken] {
	name, symbol := strings.TrimSpace(req.Name), strings.TrimSpace(req.Symbol)
	p := params("name", name, "symbol", symbol, "decimals", req.Decimals)

	return run(ctx, s, domain.OperationCreate, p, func(ctx context.Context, op *domain.PendingOperation) (CreatedToken, error) {
		decimals, err := parseDecimals(req.Decimals)
		if err != nil {
			return CreatedToken{}, err
		}

		utx, err := s.builder.BuildCreate(ctx, s.wallet.PublicKey(), decimals)
		if err != nil {
			return CreatedToken{}, err
		}
		receipt, err := s.submitter.Submit(ctx, utx, s.observer(op))
		if err != nil {
			return CreatedToken{}, err
		}

		s.logger.Info("Token created",
			zap.String("mint", receipt.Mint.String()),
			zap.String("symbol", symbol),
			zap.Uint8("decimals", decimals))

		return CreatedToken{
			Mint:        receipt.Mint,
			Name:        name,
			Symbol:      symbol,
			Decimals:    decimals,
			Signature:   receipt.Signature,
			Slot:        receipt.Slot,
			ExplorerURL: s.ExplorerTxURL(receipt.Signature),
			MintURL:     s.ExplorerAddressURL(receipt.Mint),
		}, nil
	})
}

// MintToken mints req.Amount of an existing mint into the wallet's associated
// account, creating that account when it is missing.
func (s *Service) MintToken(ctx context.Context, req MintTokenRequest) domain.Result[Receipt] {
	p := params("mint", strings.TrimSpace(req.Mint), "amount", strings.TrimSpace(req.Amount))

	return run(ctx, s, domain.OperationMint, p, func(ctx context.Context, op *domain.PendingOperation) (Receipt, error) {
		owner := s.wallet.PublicKey()
		mint, err := parseAddress("mint", req.Mint)
		if err != nil {
			return Receipt{}, err
		}
		if err := token.ValidateAmountText(req.Amount); err != nil {
			return Receipt{}, err
		}

		info, err := token.ReadMint(ctx, s.ledger, mint)
		if err != nil {
			return Receipt{}, err
		}
		if !info.HasAuthority(owner) {
			return Receipt{}, domain.Errorf(domain.KindMintAuthorityMismatch,
				"wallet %s is not the mint authority of %s", owner, mint)
		}
		amount, err := positiveBaseUnits(req.Amount, info.Decimals)
		if err != nil {
			return Receipt{}, err
		}

		destination, err := s.resolver.Resolve(ctx, owner, mint)
		if err != nil {
			return Receipt{}, err
		}
		utx, err := s.builder.BuildMint(ctx, token.MintParams{
			Owner:       owner,
			Mint:        info,
			Destination: destination,
			Amount:      amount,
		})
		if err != nil {
			return Receipt{}, err
		}
		receipt, err := s.submitter.Submit(ctx, utx, s.observer(op))
		if err != nil {
			return Receipt{}, err
		}
		return s.receipt(receipt, owner, destination.Address, info.Decimals), nil
	})
}

// SendToken transfers req.Amount from the wallet to the recipient's
// associated account with a checked transfer.
func (s *Service) SendToken(ctx context.Context, req SendTokenRequest) domain.Result[Receipt] {
	p := params(
		"mint", strings.TrimSpace(req.Mint),
		"recipient", strings.TrimSpace(req.Recipient),
		"amount", strings.TrimSpace(req.Amount),
	)
	if req.Decimals != nil {
		p["decimals"] = strconv.Itoa(int(*req.Decimals))
	}

	return run(ctx, s, domain.OperationSend, p, func(ctx context.Context, op *domain.PendingOperation) (Receipt, error) {
		owner := s.wallet.PublicKey()
		mint, err := parseAddress("mint", req.Mint)
		if err != nil {
			return Receipt{}, err
		}
		recipient, err := parseAddress("recipient", req.Recipient)
		if err != nil {
			return Receipt{}, err
		}
		if err := token.ValidateAmountText(req.Amount); err != nil {
			return Receipt{}, err
		}
		if req.Decimals != nil {
			// known decimals let the amount be checked before any network call
			if _, err := positiveBaseUnits(req.Amount, *req.Decimals); err != nil {
				return Receipt{}, err
			}
		}

		info, err := token.ReadMint(ctx, s.ledger, mint)
		if err != nil {
			return Receipt{}, err
		}
		expected := info.Decimals
		if req.Decimals != nil {
			expected = *req.Decimals
		}
		if err := info.CheckDecimals(expected); err != nil {
			return Receipt{}, err
		}
		amount, err := positiveBaseUnits(req.Amount, info.Decimals)
		if err != nil {
			return Receipt{}, err
		}

		resolved, err := s.resolver.ResolveMany(ctx,
			token.Pair{Owner: owner, Mint: mint},
			token.Pair{Owner: recipient, Mint: mint},
		)
		if err != nil {
			return Receipt{}, err
		}
		source, destination := resolved[0], resolved[1]
		if !source.Existed {
			return Receipt{}, domain.Errorf(domain.KindAccountResolutionFailed,
				"wallet holds no %s token account", mint)
		}
		if err := s.checkBalance(ctx, source.Address, amount, info.Decimals); err != nil {
			return Receipt{}, err
		}

		utx, err := s.builder.BuildSend(ctx, token.SendParams{
			Owner:            owner,
			Mint:             info,
			Source:           source,
			Destination:      destination,
			Amount:           amount,
			ExpectedDecimals: expected,
		})
		if err != nil {
			return Receipt{}, err
		}
		receipt, err := s.submitter.Submit(ctx, utx, s.observer(op))
		if err != nil {
			return Receipt{}, err
		}
		return s.receipt(receipt, recipient, destination.Address, info.Decimals), nil
	})
}

// SendableTokens lists the wallet's token rows with a positive balance.
func (s *Service) SendableTokens(ctx context.Context) domain.Result[[]poller.TokenBalance] {
	snapshot, err := poller.FetchBalances(ctx, s.ledger, s.wallet.PublicKey())
	if err != nil {
		return domain.NewResult[[]poller.TokenBalance](nil, ledgerError(ctx, err, "list token accounts"))
	}
	return domain.NewResult(snapshot.Sendable(), nil)
}

// RequestAirdrop asks the cluster faucet for solAmount SOL and waits for the
// transfer to confirm. Not available on mainnet.
func (s *Service) RequestAirdrop(ctx context.Context, solAmount string) domain.Result[Airdrop] {
	p := params("amount", strings.TrimSpace(solAmount), "cluster", string(s.cluster))

	return run(ctx, s, domain.OperationAirdrop, p, func(ctx context.Context, op *domain.PendingOperation) (Airdrop, error) {
		if !s.cluster.SupportsAirdrop() {
			return Airdrop{}, domain.Errorf(domain.KindAirdropUnavailable, "airdrops are not available on %s", s.cluster)
		}
		lamports, err := positiveBaseUnits(solAmount, lamportsDecimals)
		if err != nil {
			return Airdrop{}, err
		}

		signature, err := s.ledger.RequestAirdrop(ctx, s.wallet.PublicKey(), lamports)
		if err != nil {
			if ctx.Err() != nil {
				return Airdrop{}, domain.Wrap(domain.KindCanceled, ctx.Err(), "airdrop request canceled")
			}
			return Airdrop{}, domain.Wrap(domain.KindAirdropUnavailable, err, "faucet refused the request")
		}
		if _, err := s.submitter.Await(ctx, signature, s.observer(op)); err != nil {
			return Airdrop{}, err
		}

		sol, _ := token.ToDisplay(lamports, lamportsDecimals)
		s.logger.Info("Airdrop confirmed",
			zap.String("amount", sol),
			zap.String("signature", signature.String()))
		return Airdrop{
			Signature:   signature,
			Lamports:    lamports,
			SOL:         sol,
			ExplorerURL: s.ExplorerTxURL(signature),
		}, nil
	})
}

func (s *Service) checkBalance(ctx context.Context, account solana.PublicKey, amount uint64, decimals uint8) error {
	balance, err := s.ledger.GetTokenAccountBalance(ctx, account)
	if err != nil {
		return ledgerError(ctx, err, "read source balance")
	}
	if balance.Amount < amount {
		have, _ := token.ToDisplay(balance.Amount, int(decimals))
		want, _ := token.ToDisplay(amount, int(decimals))
		return domain.Errorf(domain.KindInsufficientBalance, "balance %s is below the requested %s", have, want)
	}
	return nil
}

func (s *Service) receipt(r *transaction.Receipt, recipient, account solana.PublicKey, decimals uint8) Receipt {
	display, _ := token.ToDisplay(r.Amount, int(decimals))
	return Receipt{
		Kind:            r.Kind,
		Signature:       r.Signature,
		Slot:            r.Slot,
		Mint:            r.Mint,
		Recipient:       recipient,
		Account:         account,
		Amount:          r.Amount,
		Display:         display,
		CreatedAccounts: r.CreatedAccounts,
		ExplorerURL:     s.ExplorerTxURL(r.Signature),
		ConfirmedAt:     r.ConfirmedAt,
	}
}

func parseAddress(field, text string) (solana.PublicKey, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return solana.PublicKey{}, domain.Errorf(domain.KindInvalidAddress, "%s is required", field)
	}
	pk, err := solana.PublicKeyFromBase58(text)
	if err != nil {
		return solana.PublicKey{}, domain.Wrap(domain.KindInvalidAddress, err, "%s %q", field, text)
	}
	return pk, nil
}

func parseDecimals(text string) (uint8, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultDecimals, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, domain.Wrap(domain.KindInvalidDecimals, err, "decimals %q", text)
	}
	if err := token.ValidateDecimals(n); err != nil {
		return 0, err
	}
	return uint8(n), nil
}

// positiveBaseUnits converts amount text and rejects amounts that floor to zero.
func positiveBaseUnits(text string, decimals uint8) (uint64, error) {
	amount, err := token.ToBaseUnits(text, int(decimals))
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, domain.Errorf(domain.KindInvalidAmount, "amount %q is zero at %d decimals", strings.TrimSpace(text), decimals)
	}
	return amount, nil
}

func ledgerError(ctx context.Context, err error, what string) error {
	if ctx.Err() != nil {
		return domain.Wrap(domain.KindCanceled, ctx.Err(), "%s", what)
	}
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return domain.Wrap(domain.KindLedgerUnavailable, err, "%s", what)
}
