package solbc

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenAccount(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	raw := []byte(`{
		"program": "spl-token",
		"parsed": {
			"type": "account",
			"info": {
				"mint": "` + mint.String() + `",
				"owner": "` + owner.String() + `",
				"tokenAmount": {"amount": "1500000", "decimals": 6, "uiAmount": 1.5}
			}
		}
	}`)

	holding, err := parseTokenAccount(account, raw)
	require.NoError(t, err)
	assert.Equal(t, account, holding.Account)
	assert.Equal(t, mint, holding.Mint)
	assert.Equal(t, owner, holding.Owner)
	assert.Equal(t, uint64(1_500_000), holding.Amount)
	assert.Equal(t, uint8(6), holding.Decimals)
}

func TestParseTokenAccountRejectsGarbage(t *testing.T) {
	account := solana.NewWallet().PublicKey()

	_, err := parseTokenAccount(account, nil)
	assert.Error(t, err)

	_, err = parseTokenAccount(account, []byte(`{"parsed":{"type":"mint","info":{}}}`))
	assert.Error(t, err)

	_, err = parseTokenAccount(account, []byte(`{"parsed":{"type":"account","info":{"mint":"bad","owner":"bad"}}}`))
	assert.Error(t, err)
}

func TestDescribeStatusErr(t *testing.T) {
	statusErr := map[string]interface{}{
		"InstructionError": []interface{}{float64(1), map[string]interface{}{"Custom": float64(1)}},
	}
	assert.Equal(t, "instruction 1: insufficient funds", DescribeStatusErr(statusErr))
	assert.Equal(t, "", DescribeStatusErr(nil))
	assert.Equal(t, `"AccountInUse"`, DescribeStatusErr("AccountInUse"))
}

func TestParseCustomErrorCode(t *testing.T) {
	code, ok := parseCustomErrorCode("Program TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA failed: custom program error: 0x12")
	require.True(t, ok)
	assert.Equal(t, 18, code)

	_, ok = parseCustomErrorCode("Program log: Instruction: MintTo")
	assert.False(t, ok)
}
