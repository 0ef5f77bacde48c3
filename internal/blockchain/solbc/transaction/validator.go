// internal/blockchain/solbc/transaction/validator.go
package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

type Validator struct {
	logger *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{
		logger: logger.Named("tx-validator"),
	}
}

// ValidateUnsigned проверяет собранную транзакцию перед тем, как просить подпись.
func (v *Validator) ValidateUnsigned(tx *solana.Transaction, wallet solana.PublicKey) error {
	if tx == nil {
		return fmt.Errorf("%w: transaction is nil", ErrInvalidInstruction)
	}

	if err := v.ValidateBlockhash(tx); err != nil {
		return err
	}

	if err := v.ValidateInstructions(tx.Message.Instructions); err != nil {
		return err
	}

	if err := v.ValidateFeePayer(tx, wallet); err != nil {
		return err
	}

	return nil
}

func (v *Validator) ValidateBlockhash(tx *solana.Transaction) error {
	if tx.Message.RecentBlockhash == (solana.Hash{}) {
		return ErrInvalidBlockhash
	}
	return nil
}

func (v *Validator) ValidateInstructions(instructions []solana.CompiledInstruction) error {
	if len(instructions) == 0 {
		return ErrInvalidInstruction
	}
	return nil
}

// ValidateFeePayer – первый аккаунт сообщения должен быть кошельком пользователя.
func (v *Validator) ValidateFeePayer(tx *solana.Transaction, wallet solana.PublicKey) error {
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(wallet) {
		v.logger.Debug("Fee payer mismatch", zap.String("wallet", wallet.String()))
		return ErrFeePayerMismatch
	}
	return nil
}
