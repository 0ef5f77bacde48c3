// internal/wallet/sign.go
package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PartialSign подписывает сообщение tx ключами keys и кладёт каждую подпись
// в слот соответствующего подписанта. Чужие слоты не изменяются.
func PartialSign(tx *solana.Transaction, keys ...solana.PrivateKey) error {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) < required {
		sigs := make([]solana.Signature, required)
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}

	for _, key := range keys {
		idx := signerIndex(tx, key.PublicKey())
		if idx < 0 {
			return fmt.Errorf("key %s is not a required signer", key.PublicKey())
		}
		sig, err := key.Sign(msg)
		if err != nil {
			return fmt.Errorf("failed to sign with %s: %w", key.PublicKey(), err)
		}
		tx.Signatures[idx] = sig
	}
	return nil
}

// MissingSignatures перечисляет обязательных подписантов без подписи.
func MissingSignatures(tx *solana.Transaction) []solana.PublicKey {
	required := int(tx.Message.Header.NumRequiredSignatures)
	var missing []solana.PublicKey
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if i >= len(tx.Signatures) || tx.Signatures[i] == (solana.Signature{}) {
			missing = append(missing, tx.Message.AccountKeys[i])
		}
	}
	return missing
}

func signerIndex(tx *solana.Transaction, key solana.PublicKey) int {
	required := int(tx.Message.Header.NumRequiredSignatures)
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].Equals(key) {
			return i
		}
	}
	return -1
}
