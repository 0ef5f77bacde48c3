// internal/blockchain/solbc/client_test.go
package solbc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain"
)

// newRPCServer отвечает на каждый метод заранее заготовленным телом result или error.
func newRPCServer(t *testing.T, replies map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		reply, ok := replies[req.Method]
		if !ok {
			reply = `"error":{"code":-32601,"message":"Method not found"}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,` + reply + `}`))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, rpc.CommitmentConfirmed, zap.NewNop())
}

func TestGetTokenAccountsByOwnerSkipsUnparsedAccounts(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	parsed := solana.NewWallet().PublicKey()
	binary := solana.NewWallet().PublicKey()

	client := newRPCServer(t, map[string]string{
		"getTokenAccountsByOwner": `"result":{"context":{"slot":7},"value":[
			{"pubkey":"` + parsed.String() + `","account":{
				"lamports":2039280,"owner":"` + solana.TokenProgramID.String() + `","executable":false,"rentEpoch":0,"space":165,
				"data":{"program":"spl-token","space":165,"parsed":{"type":"account","info":{
					"mint":"` + mint.String() + `","owner":"` + owner.String() + `",
					"tokenAmount":{"amount":"2500","decimals":2,"uiAmount":25}}}}}},
			{"pubkey":"` + binary.String() + `","account":{
				"lamports":2039280,"owner":"` + solana.TokenProgramID.String() + `","executable":false,"rentEpoch":0,"space":0,
				"data":["","base64"]}}
		]}`,
	})

	holdings, err := client.GetTokenAccountsByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, parsed, holdings[0].Account)
	assert.Equal(t, mint, holdings[0].Mint)
	assert.Equal(t, uint64(2500), holdings[0].Amount)
	assert.Equal(t, uint8(2), holdings[0].Decimals)
}

func TestGetTokenAccountBalanceMissingAccount(t *testing.T) {
	account := solana.NewWallet().PublicKey()

	tests := []struct {
		name        string
		reply       string
		wantMissing bool
	}{
		{
			name:        "node reports missing account",
			reply:       `"error":{"code":-32602,"message":"Invalid param: could not find account"}`,
			wantMissing: true,
		},
		{
			name:        "unknown method is not a missing account",
			reply:       `"error":{"code":-32601,"message":"Method not found"}`,
			wantMissing: false,
		},
		{
			name:        "other invalid param",
			reply:       `"error":{"code":-32602,"message":"Invalid param: not a Token account"}`,
			wantMissing: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newRPCServer(t, map[string]string{"getTokenAccountBalance": tt.reply})

			_, err := client.GetTokenAccountBalance(context.Background(), account)
			require.Error(t, err)
			assert.Equal(t, tt.wantMissing, blockchain.IsAccountNotFoundError(err))
		})
	}
}

func TestGetTokenAccountBalance(t *testing.T) {
	client := newRPCServer(t, map[string]string{
		"getTokenAccountBalance": `"result":{"context":{"slot":3},"value":{"amount":"1500000","decimals":6,"uiAmount":1.5,"uiAmountString":"1.5"}}`,
	})

	amount, err := client.GetTokenAccountBalance(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, blockchain.TokenAmount{Amount: 1_500_000, Decimals: 6}, amount)
}
