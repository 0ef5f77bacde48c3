// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc"
	"go.uber.org/zap"
)

type Monitor struct {
	client blockchain.Client
	logger *zap.Logger
	config Config
}

func NewMonitor(client blockchain.Client, logger *zap.Logger, config Config) *Monitor {
	return &Monitor{
		client: client,
		logger: logger.Named("tx-monitor"),
		config: config.withDefaults(),
	}
}

// AwaitConfirmation опрашивает статус с экспоненциальной задержкой, число попыток ограничено.
// Ошибки:
//   - ErrTransactionFailed – транзакция попала в леджер с ошибкой;
//   - ошибка контекста – ожидание прервано вызывающим;
//   - остальное – подтверждение не получено за отведённые попытки.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*Status, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.config.InitialInterval
	policy.MaxInterval = m.config.MaxInterval

	attempt := 0
	operation := func() (*Status, error) {
		attempt++
		response, err := m.client.GetSignatureStatuses(ctx, signature)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			m.logger.Warn("Confirmation check failed",
				zap.String("signature", signature.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return nil, err
		}

		if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
			return nil, errPending
		}

		status := toStatus(signature, response.Value[0])
		if response.Value[0].Err != nil {
			return status, backoff.Permanent(fmt.Errorf("%w: %s", ErrTransactionFailed, status.Error))
		}
		if !reached(status.ConfirmationStatus, m.config.Commitment) {
			return nil, errPending
		}
		return status, nil
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(m.config.MaxAttempts),
		backoff.WithMaxElapsedTime(m.config.MaxElapsed),
	}

	status, err := backoff.Retry(ctx, operation, opts...)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		if ctx.Err() != nil && !errors.Is(err, ErrTransactionFailed) {
			return nil, ctx.Err()
		}
		return status, err
	}

	m.logger.Debug("Transaction confirmed",
		zap.String("signature", signature.String()),
		zap.String("status", status.Status),
		zap.Uint64("slot", status.Slot),
		zap.Int("attempts", attempt))
	return status, nil
}

func toStatus(signature solana.Signature, result *rpc.SignatureStatusesResult) *Status {
	status := &Status{
		Signature:          signature,
		Slot:               result.Slot,
		ConfirmationStatus: result.ConfirmationStatus,
		Timestamp:          time.Now(),
	}
	if result.Confirmations != nil {
		status.Confirmations = *result.Confirmations
	}

	switch result.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		status.Status = "finalized"
	case rpc.ConfirmationStatusConfirmed:
		status.Status = "confirmed"
	default:
		status.Status = "pending"
	}

	if result.Err != nil {
		status.Error = solbc.DescribeStatusErr(result.Err)
		status.Status = "failed"
	}
	return status
}

// reached сообщает, достиг ли статус целевого уровня подтверждения.
func reached(got rpc.ConfirmationStatusType, target rpc.CommitmentType) bool {
	rank := func(s string) int {
		switch s {
		case string(rpc.ConfirmationStatusProcessed):
			return 1
		case string(rpc.ConfirmationStatusConfirmed):
			return 2
		case string(rpc.ConfirmationStatusFinalized):
			return 3
		}
		return 0
	}
	return rank(string(got)) > 0 && rank(string(got)) >= rank(string(target))
}
