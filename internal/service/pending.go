// internal/service/pending.go
package service

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc/transaction"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/events"
)

// run tracks one operation from start to a terminal status and folds its
// outcome into a Result. Panics inside fn end the operation as Internal.
func run[T any](ctx context.Context, s *Service, kind domain.OperationKind, params map[string]string,
	fn func(ctx context.Context, op *domain.PendingOperation) (T, error)) (res domain.Result[T]) {

	op := s.begin(kind, params)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Operation panicked",
				zap.String("operation_id", op.ID),
				zap.String("kind", string(kind)),
				zap.Any("panic", r),
				zap.Stack("stack"))
			var zero T
			err := domain.Errorf(domain.KindInternal, "unexpected failure: %v", r)
			s.complete(op, err)
			res = domain.NewResult(zero, err)
			res.OperationID = op.ID
		}
	}()

	v, err := fn(ctx, op)
	s.complete(op, err)
	res = domain.NewResult(v, err)
	res.OperationID = op.ID
	return res
}

func (s *Service) begin(kind domain.OperationKind, params map[string]string) *domain.PendingOperation {
	op := domain.NewPendingOperation(kind, params)

	s.mu.Lock()
	s.pending[op.ID] = op
	snapshot := op.Clone()
	s.mu.Unlock()

	s.logger.Debug("Operation started",
		zap.String("operation_id", op.ID),
		zap.String("kind", string(kind)))
	s.emit(snapshot)
	return op
}

// transition moves a non-terminal operation to status.
func (s *Service) transition(op *domain.PendingOperation, status domain.Status, signature solana.Signature) {
	s.mu.Lock()
	if op.Status.Terminal() || op.Status == status {
		s.mu.Unlock()
		return
	}
	op.Status = status
	if signature != (solana.Signature{}) {
		op.Signature = signature
	}
	op.UpdatedAt = time.Now()
	snapshot := op.Clone()
	s.mu.Unlock()

	s.emit(snapshot)
}

func (s *Service) complete(op *domain.PendingOperation, err error) {
	s.mu.Lock()
	if op.Status.Terminal() {
		s.mu.Unlock()
		return
	}
	op.UpdatedAt = time.Now()
	if err == nil {
		op.Status = domain.StatusConfirmed
		op.Outcome = domain.OutcomeNone
	} else {
		kind := domain.KindOf(err)
		op.Status = domain.StatusFailed
		op.ErrorKind = kind
		op.Message = err.Error()
		op.Outcome = kind.Outcome()
		if sig, ok := domain.SignatureOf(err); ok {
			op.Signature = sig
		}
	}
	snapshot := op.Clone()
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("operation_id", snapshot.ID),
		zap.String("kind", string(snapshot.Kind)),
		zap.String("status", string(snapshot.Status)),
	}
	if err != nil {
		fields = append(fields, zap.String("error_kind", string(snapshot.ErrorKind)), zap.Error(err))
		s.logger.Warn("Operation failed", fields...)
	} else {
		s.logger.Debug("Operation completed", fields...)
	}
	s.emit(snapshot)
}

func (s *Service) emit(op domain.PendingOperation) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(events.NewOperationEvent(op)); err != nil {
		s.logger.Debug("Operation event dropped",
			zap.String("operation_id", op.ID),
			zap.Error(err))
	}
}

// observer maps submitter states onto the operation. Terminal states are set
// by complete from the returned error.
func (s *Service) observer(op *domain.PendingOperation) transaction.Observer {
	return func(state transaction.State, signature solana.Signature) {
		switch state {
		case transaction.StateAwaitingSignature:
			s.transition(op, domain.StatusAwaitingSignature, signature)
		case transaction.StateSubmitted:
			s.transition(op, domain.StatusSubmitting, signature)
		}
	}
}

// params builds the operation parameter map from key/value pairs.
func params(kv ...string) map[string]string {
	out := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}
