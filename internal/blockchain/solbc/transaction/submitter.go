// internal/blockchain/solbc/transaction/submitter.go
package transaction

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/token"
	"github.com/oyevasu/spl-token-studio/internal/wallet"
	"go.uber.org/zap"
)

// Submitter проводит собранную транзакцию через подпись, отправку и подтверждение.
// Каждая транзакция отправляется не более одного раза; повторной отправки нет.
type Submitter struct {
	client    blockchain.Client
	signer    wallet.Signer
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics

	mu        sync.Mutex
	submitted map[[sha256.Size]byte]struct{}
}

func NewSubmitter(client blockchain.Client, signer wallet.Signer, logger *zap.Logger, config Config) *Submitter {
	config = config.withDefaults()
	return &Submitter{
		client:    client,
		signer:    signer,
		logger:    logger.Named("tx-submitter"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		metrics:   NewMetrics(),
		submitted: make(map[[sha256.Size]byte]struct{}),
	}
}

// Metrics возвращает счётчики отправок.
func (s *Submitter) Metrics() *Metrics {
	return s.metrics
}

// Submit подписывает utx локальными ключами и кошельком, отправляет и ждёт подтверждения.
func (s *Submitter) Submit(ctx context.Context, utx *token.UnsignedTransaction, observe Observer) (*Receipt, error) {
	if observe == nil {
		observe = func(State, solana.Signature) {}
	}
	defer s.metrics.TrackTransaction(time.Now())

	observe(StateBuilt, solana.Signature{})

	if utx == nil || utx.Tx == nil {
		return nil, domain.Errorf(domain.KindInternal, "nothing to submit")
	}
	tx := utx.Tx

	if err := s.validator.ValidateUnsigned(tx, s.signer.PublicKey()); err != nil {
		s.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, domain.Wrap(domain.KindInternal, err, "invalid %s transaction", utx.Kind)
	}

	digest, err := messageDigest(tx)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, err, "encode message")
	}
	if s.wasSubmitted(digest) {
		return nil, domain.Errorf(domain.KindReplayRefused, "%s transaction was already submitted", utx.Kind)
	}

	if len(utx.LocalSigners) > 0 {
		err := wallet.PartialSign(tx, utx.LocalSigners...)
		// эфемерные ключи больше не нужны
		utx.LocalSigners = nil
		if err != nil {
			return nil, domain.Wrap(domain.KindInternal, err, "sign with local keys")
		}
	}

	observe(StateAwaitingSignature, solana.Signature{})
	if err := s.signer.SignTransaction(ctx, tx); err != nil {
		observe(StateRejected, solana.Signature{})
		if ctx.Err() != nil {
			return nil, domain.Wrap(domain.KindCanceled, ctx.Err(), "signature request canceled")
		}
		s.logger.Info("Wallet declined to sign", zap.String("kind", string(utx.Kind)), zap.Error(err))
		return nil, domain.Wrap(domain.KindSigningDenied, err, "wallet did not sign")
	}
	if missing := wallet.MissingSignatures(tx); len(missing) > 0 {
		observe(StateRejected, solana.Signature{})
		return nil, domain.Errorf(domain.KindSigningDenied, "transaction is missing %d required signature(s), first %s", len(missing), missing[0])
	}

	signature := tx.Signatures[0]
	if !s.reserve(digest) {
		return nil, domain.Errorf(domain.KindReplayRefused, "%s transaction was already submitted", utx.Kind)
	}

	s.metrics.submitted.Add(1)
	sent, err := s.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       s.config.SkipPreflight,
		PreflightCommitment: s.config.Commitment,
	})
	if err != nil {
		if ctx.Err() != nil {
			s.metrics.unknown.Add(1)
			observe(StateAbandoned, signature)
			return nil, domain.Wrap(domain.KindConfirmationAbandoned, ctx.Err(),
				"canceled while submitting; status unknown").WithSignature(signature)
		}
		s.metrics.failed.Add(1)
		observe(StateFailed, solana.Signature{})
		s.logger.Error("Failed to send transaction", zap.String("kind", string(utx.Kind)), zap.Error(err))
		return nil, domain.Wrap(domain.KindLedgerUnavailable, err, "submit %s transaction", utx.Kind)
	}
	if sent != (solana.Signature{}) {
		signature = sent
	}

	observe(StateSubmitted, signature)
	s.logger.Info("Transaction submitted",
		zap.String("kind", string(utx.Kind)),
		zap.String("signature", signature.String()))

	status, err := s.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		return nil, s.confirmationError(ctx, err, signature, observe)
	}

	s.metrics.confirmed.Add(1)
	observe(StateConfirmed, signature)
	s.logger.Info("Transaction confirmed",
		zap.String("kind", string(utx.Kind)),
		zap.String("signature", signature.String()))

	return &Receipt{
		Kind:               utx.Kind,
		Signature:          signature,
		Slot:               status.Slot,
		ConfirmationStatus: status.ConfirmationStatus,
		Mint:               utx.Mint,
		Amount:             utx.Amount,
		CreatedAccounts:    utx.CreatedAccounts,
		ConfirmedAt:        status.Timestamp,
	}, nil
}

// Await ждёт подтверждения подписи, отправленной в обход Submit (например, airdrop).
// Ошибки те же, что у Submit после отправки.
func (s *Submitter) Await(ctx context.Context, signature solana.Signature, observe Observer) (*Status, error) {
	if observe == nil {
		observe = func(State, solana.Signature) {}
	}
	observe(StateSubmitted, signature)
	status, err := s.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		return nil, s.confirmationError(ctx, err, signature, observe)
	}
	s.metrics.confirmed.Add(1)
	observe(StateConfirmed, signature)
	return status, nil
}

func (s *Submitter) confirmationError(ctx context.Context, err error, signature solana.Signature, observe Observer) error {
	switch {
	case errors.Is(err, ErrTransactionFailed):
		s.metrics.failed.Add(1)
		observe(StateFailed, signature)
		return domain.Wrap(domain.KindTransactionFailed, err, "transaction %s", signature).WithSignature(signature)
	case ctx.Err() != nil:
		s.metrics.unknown.Add(1)
		observe(StateAbandoned, signature)
		s.logger.Warn("Stopped waiting for confirmation", zap.String("signature", signature.String()))
		return domain.Wrap(domain.KindConfirmationAbandoned, ctx.Err(),
			"stopped waiting for %s; status unknown", signature).WithSignature(signature)
	default:
		s.metrics.unknown.Add(1)
		observe(StateTimedOut, signature)
		s.logger.Warn("Confirmation timed out",
			zap.String("signature", signature.String()),
			zap.Uint("max_attempts", s.config.MaxAttempts),
			zap.Error(err))
		return domain.Wrap(domain.KindConfirmationTimeout, err,
			"no confirmation for %s; status unknown", signature).WithSignature(signature)
	}
}

func (s *Submitter) wasSubmitted(digest [sha256.Size]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.submitted[digest]
	return ok
}

// reserve помечает сообщение как отправленное; false, если оно уже было отправлено.
func (s *Submitter) reserve(digest [sha256.Size]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submitted[digest]; ok {
		return false
	}
	s.submitted[digest] = struct{}{}
	return true
}

func messageDigest(tx *solana.Transaction) ([sha256.Size]byte, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(msg), nil
}
