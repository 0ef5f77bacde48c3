// internal/blockchain/programs/computebudget/computebudget.go
package computebudget

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	SetComputeUnitLimit uint8 = 2
	SetComputeUnitPrice uint8 = 3
)

// Config задаёт лимит и цену compute units. Нулевые поля означают "не добавлять инструкцию".
type Config struct {
	UnitLimit uint32
	// UnitPrice в микролампортах за compute unit.
	UnitPrice uint64
}

// Enabled сообщает, нужно ли вообще добавлять инструкции бюджета.
func (c Config) Enabled() bool {
	return c.UnitLimit > 0 || c.UnitPrice > 0
}

// BuildInstructions создаёт инструкции бюджета; они должны идти первыми в транзакции.
func BuildInstructions(config Config) ([]solana.Instruction, error) {
	var instructions []solana.Instruction

	if config.UnitLimit > 0 {
		ix, err := build(SetComputeUnitLimit, func(enc *bin.Encoder) error {
			return enc.WriteUint32(config.UnitLimit, bin.LE)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
		}
		instructions = append(instructions, ix)
	}

	if config.UnitPrice > 0 {
		ix, err := build(SetComputeUnitPrice, func(enc *bin.Encoder) error {
			return enc.WriteUint64(config.UnitPrice, bin.LE)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		instructions = append(instructions, ix)
	}

	return instructions, nil
}

func build(discriminator uint8, body func(enc *bin.Encoder) error) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(discriminator); err != nil {
		return nil, err
	}
	if err := body(enc); err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{}, buf.Bytes()), nil
}
