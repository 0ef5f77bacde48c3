// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"go.uber.org/zap"
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc        *rpc.Client
	logger     *zap.Logger
	commitment rpc.CommitmentType
	errors     *ErrorAnalyzer
}

var _ blockchain.Client = (*Client)(nil)

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, commitment rpc.CommitmentType, logger *zap.Logger) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		rpc:        rpc.New(rpcURL),
		logger:     logger.Named("solbc-client"),
		commitment: commitment,
		errors:     NewErrorAnalyzer(logger),
	}
}

// GetRecentBlockhash получает последний blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetMinimumBalanceForRentExemption возвращает минимальное количество лампортов для аккаунта dataSize байт.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, c.commitment)
	if err != nil {
		c.logger.Error("GetMinimumBalanceForRentExemption error",
			zap.Uint64("data_size", dataSize),
			zap.Error(err))
		return 0, err
	}
	return lamports, nil
}

// GetAccountInfo получает информацию об аккаунте.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
		}
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	return result, nil
}

// GetMint читает mint-аккаунт и декодирует его layout.
func (c *Client) GetMint(ctx context.Context, mint solana.PublicKey) (*token.Mint, error) {
	info, err := c.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, err
	}
	if !info.Value.Owner.Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("account %s is not owned by the token program (owner %s)", mint, info.Value.Owner)
	}

	var m token.Mint
	if err := bin.NewBinDecoder(info.Value.Data.GetBinary()).Decode(&m); err != nil {
		c.logger.Debug("Mint decode error",
			zap.String("mint", mint.String()),
			zap.Error(err))
		return nil, fmt.Errorf("decode mint %s: %w", mint, err)
	}
	return &m, nil
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error",
			zap.Any("details", c.errors.AnalyzeRPCError(err)),
			zap.Error(err))
		return solana.Signature{}, fmt.Errorf("%s: %w", c.errors.Describe(err), err)
	}
	return sig, nil
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	if err != nil {
		c.logger.Error("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetBalance получает баланс аккаунта.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	if commitment == "" {
		commitment = c.commitment
	}
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// GetTokenAccountBalance возвращает баланс токен-аккаунта в базовых единицах.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (blockchain.TokenAmount, error) {
	result, err := c.rpc.GetTokenAccountBalance(ctx, account, c.commitment)
	if err != nil {
		if blockchain.IsAccountNotFoundError(err) || isMissingAccountRPCError(err) {
			return blockchain.TokenAmount{}, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, account)
		}
		c.logger.Error("GetTokenAccountBalance error",
			zap.String("account", account.String()),
			zap.Error(err))
		return blockchain.TokenAmount{}, err
	}
	if result == nil || result.Value == nil {
		return blockchain.TokenAmount{}, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, account)
	}
	return parseUITokenAmount(result.Value.Amount, result.Value.Decimals)
}

// GetTokenAccountsByOwner перечисляет все токен-аккаунты владельца.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]blockchain.TokenHolding, error) {
	programID := solana.TokenProgramID
	result, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingJSONParsed,
		})
	if err != nil {
		c.logger.Error("GetTokenAccountsByOwner error",
			zap.String("owner", owner.String()),
			zap.Error(err))
		return nil, err
	}

	holdings := make([]blockchain.TokenHolding, 0, len(result.Value))
	for _, acct := range result.Value {
		if acct == nil || acct.Account.Data == nil {
			continue
		}
		holding, err := parseTokenAccount(acct.Pubkey, acct.Account.Data.GetRawJSON())
		if err != nil {
			c.logger.Debug("Skipping unparsable token account",
				zap.String("account", acct.Pubkey.String()),
				zap.Error(err))
			continue
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

// GetSignaturesForAddress возвращает последние limit подписей для адреса.
func (c *Client) GetSignaturesForAddress(ctx context.Context, address solana.PublicKey, limit int) ([]blockchain.SignatureInfo, error) {
	opts := &rpc.GetSignaturesForAddressOpts{Commitment: c.commitment}
	if limit > 0 {
		opts.Limit = &limit
	}
	result, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, address, opts)
	if err != nil {
		c.logger.Error("GetSignaturesForAddress error",
			zap.String("address", address.String()),
			zap.Error(err))
		return nil, err
	}

	out := make([]blockchain.SignatureInfo, 0, len(result))
	for _, entry := range result {
		if entry == nil {
			continue
		}
		info := blockchain.SignatureInfo{
			Signature:          entry.Signature,
			Slot:               entry.Slot,
			Err:                entry.Err,
			ConfirmationStatus: entry.ConfirmationStatus,
		}
		if entry.BlockTime != nil {
			t := entry.BlockTime.Time()
			info.BlockTime = &t
		}
		if entry.Memo != nil {
			info.Memo = *entry.Memo
		}
		out = append(out, info)
	}
	return out, nil
}

// RequestAirdrop запрашивает lamports SOL у faucet кластера.
func (c *Client) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, pubkey, lamports, c.commitment)
	if err != nil {
		c.logger.Error("RequestAirdrop error",
			zap.String("pubkey", pubkey.String()),
			zap.Uint64("lamports", lamports),
			zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}
