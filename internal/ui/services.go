// internal/ui/services.go
package ui

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/logger"
	"github.com/oyevasu/spl-token-studio/internal/poller"
	"github.com/oyevasu/spl-token-studio/internal/service"
	"github.com/oyevasu/spl-token-studio/internal/ui/state"
)

// TokenService is the part of the token service the screens call.
type TokenService interface {
	CreateToken(ctx context.Context, req service.CreateTokenRequest) domain.Result[service.CreatedToken]
	MintToken(ctx context.Context, req service.MintTokenRequest) domain.Result[service.Receipt]
	SendToken(ctx context.Context, req service.SendTokenRequest) domain.Result[service.Receipt]
	RequestAirdrop(ctx context.Context, solAmount string) domain.Result[service.Airdrop]
	SendableTokens(ctx context.Context) domain.Result[[]poller.TokenBalance]

	WalletAddress() solana.PublicKey
	Cluster() blockchain.Cluster
	ExplorerTxURL(signature solana.Signature) string
	Operations() []domain.PendingOperation
	Forget(id string) bool
}

var _ TokenService = (*service.Service)(nil)

// Services bundles what the screens need. Context bounds every operation
// started from the UI.
type Services struct {
	Context      context.Context
	Tokens       TokenService
	Cache        *state.UICache
	Logs         *logger.LogBuffer
	Logger       *zap.Logger
	PollInterval time.Duration
	// Refresh asks the pollers for an immediate fetch; may be nil.
	Refresh func()
}

// Validate fills defaults and reports missing collaborators.
func (s *Services) Validate() error {
	if s.Tokens == nil {
		return domain.Errorf(domain.KindInternal, "token service is required")
	}
	if s.Context == nil {
		s.Context = context.Background()
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.Cache == nil {
		s.Cache = state.NewUICache(s.Logger)
	}
	return nil
}
