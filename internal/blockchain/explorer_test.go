package blockchain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
)

func TestExplorerURLs(t *testing.T) {
	devnet := Explorer{Cluster: ClusterDevnet}
	assert.Equal(t, "https://explorer.solana.com/tx/abc?cluster=devnet", devnet.TxURL("abc"))
	assert.Equal(t, "https://explorer.solana.com/address/xyz?cluster=devnet", devnet.AddressURL("xyz"))

	mainnet := Explorer{Cluster: ClusterMainnet}
	assert.Equal(t, "https://explorer.solana.com/tx/abc", mainnet.TxURL("abc"))
	assert.False(t, ClusterMainnet.SupportsAirdrop())
	assert.True(t, ClusterDevnet.SupportsAirdrop())
}

func TestIsAccountNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrAccountNotFound, true},
		{"wrapped sentinel", fmt.Errorf("%w: 11111111111111111111111111111111", ErrAccountNotFound), true},
		{"rpc not found", fmt.Errorf("getAccountInfo: %w", rpc.ErrNotFound), true},
		{"method not found", errors.New("(-32601) Method not found"), false},
		{"blockhash not found", errors.New("blockhash not found"), false},
		{"other", assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAccountNotFoundError(tt.err))
		})
	}
}
