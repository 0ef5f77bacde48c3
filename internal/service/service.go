// internal/service/service.go
package service

import (
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/programs/computebudget"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc/transaction"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/events"
	"github.com/oyevasu/spl-token-studio/internal/token"
	"github.com/oyevasu/spl-token-studio/internal/wallet"
)

// Options wires the service to its collaborators. Ledger and Wallet are required.
type Options struct {
	Ledger    blockchain.Client
	Wallet    wallet.Signer
	Cluster   blockchain.Cluster
	Submitter transaction.Config
	Budget    computebudget.Config
	// Bus receives an OperationEvent on every status change. Optional.
	Bus    *events.Bus
	Logger *zap.Logger
}

// Service is the entry point the UI and CLI use for token operations.
// Every public operation returns a domain.Result and never panics.
type Service struct {
	ledger    blockchain.Client
	wallet    wallet.Signer
	cluster   blockchain.Cluster
	explorer  blockchain.Explorer
	resolver  *token.Resolver
	builder   *token.Builder
	submitter *transaction.Submitter
	bus       *events.Bus
	logger    *zap.Logger

	mu      sync.RWMutex
	pending map[string]*domain.PendingOperation
}

// New creates the service. The builder, resolver and submitter are created
// once here and shared by all operations.
func New(opts Options) (*Service, error) {
	if opts.Ledger == nil {
		return nil, domain.Errorf(domain.KindLedgerUnavailable, "no ledger client configured")
	}
	if opts.Wallet == nil {
		return nil, domain.Errorf(domain.KindWalletUnavailable, "no wallet connected")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cluster := opts.Cluster
	if cluster == "" {
		cluster = blockchain.ClusterDevnet
	}

	s := &Service{
		ledger:    opts.Ledger,
		wallet:    opts.Wallet,
		cluster:   cluster,
		explorer:  blockchain.Explorer{Cluster: cluster},
		resolver:  token.NewResolver(opts.Ledger, logger),
		builder:   token.NewBuilder(opts.Ledger, logger, token.WithComputeBudget(opts.Budget)),
		submitter: transaction.NewSubmitter(opts.Ledger, opts.Wallet, logger, opts.Submitter),
		bus:       opts.Bus,
		logger:    logger.Named("token-service"),
		pending:   make(map[string]*domain.PendingOperation),
	}

	s.logger.Info("Token service initialized",
		zap.String("cluster", string(cluster)),
		zap.String("owner", opts.Wallet.PublicKey().String()))
	return s, nil
}

// WalletAddress returns the connected wallet's public address.
func (s *Service) WalletAddress() solana.PublicKey {
	return s.wallet.PublicKey()
}

// Cluster returns the cluster the service submits to.
func (s *Service) Cluster() blockchain.Cluster {
	return s.cluster
}

// Explorer returns the link builder for the configured cluster.
func (s *Service) Explorer() blockchain.Explorer {
	return s.explorer
}

func (s *Service) ExplorerTxURL(signature solana.Signature) string {
	return s.explorer.TxURL(signature.String())
}

func (s *Service) ExplorerAddressURL(address solana.PublicKey) string {
	return s.explorer.AddressURL(address.String())
}

// Metrics returns submission counters.
func (s *Service) Metrics() transaction.MetricsSnapshot {
	return s.submitter.Metrics().Snapshot()
}

// Pending returns a copy of the operation with the given ID.
func (s *Service) Pending(id string) (domain.PendingOperation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.pending[id]
	if !ok {
		return domain.PendingOperation{}, false
	}
	return op.Clone(), true
}

// Operations returns copies of all tracked operations, newest first.
func (s *Service) Operations() []domain.PendingOperation {
	s.mu.RLock()
	out := make([]domain.PendingOperation, 0, len(s.pending))
	for _, op := range s.pending {
		out = append(out, op.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// Forget drops a finished operation. Operations still in flight are kept.
func (s *Service) Forget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.pending[id]
	if !ok || !op.Status.Terminal() {
		return false
	}
	delete(s.pending, id)
	return true
}
