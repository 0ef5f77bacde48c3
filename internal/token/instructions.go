// internal/token/instructions.go
package token

import (
	"github.com/gagliardetto/solana-go"
)

// createIdempotentDiscriminator – CreateIdempotent в программе associated token account.
const createIdempotentDiscriminator = 1

// NewCreateAssociatedAccountIdempotentInstruction создаёт ATA owner/mint за счёт payer.
// Если аккаунт уже есть, инструкция ничего не делает.
func NewCreateAssociatedAccountIdempotentInstruction(payer, owner, mint, ata solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		solana.AccountMetaSlice{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: ata, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: false},
			{PublicKey: mint, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		},
		[]byte{createIdempotentDiscriminator},
	)
}
