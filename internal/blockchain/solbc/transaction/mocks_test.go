// internal/blockchain/solbc/transaction/mocks_test.go
package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/blockchaintest"
	"github.com/oyevasu/spl-token-studio/internal/token"
	"github.com/oyevasu/spl-token-studio/internal/wallet"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockSigner реализует wallet.Signer
type MockSigner struct {
	mock.Mock
	key solana.PrivateKey
}

func (m *MockSigner) PublicKey() solana.PublicKey {
	return m.key.PublicKey()
}

func (m *MockSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func newMockSigner(t *testing.T) *MockSigner {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return &MockSigner{key: key}
}

// approve настраивает мок на реальную подпись своим ключом.
func (m *MockSigner) approve(t *testing.T) {
	m.On("SignTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			tx := args.Get(1).(*solana.Transaction)
			require.NoError(t, wallet.PartialSign(tx, m.key))
		}).
		Return(nil)
}

func testConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

type fixture struct {
	ledger    *blockchaintest.Ledger
	signer    *MockSigner
	submitter *Submitter
	builder   *token.Builder
	mint      solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	ledger := blockchaintest.NewLedger()
	signer := newMockSigner(t)
	logger := zaptest.NewLogger(t)
	mint := solana.NewWallet().PublicKey()
	ledger.AddMint(mint, 6, signer.PublicKey())
	return &fixture{
		ledger:    ledger,
		signer:    signer,
		submitter: NewSubmitter(ledger, signer, logger, testConfig()),
		builder:   token.NewBuilder(ledger, logger),
		mint:      mint,
	}
}

func (f *fixture) buildMint(t *testing.T) *token.UnsignedTransaction {
	t.Helper()
	owner := f.signer.PublicKey()
	ata, err := token.Derive(owner, f.mint)
	require.NoError(t, err)
	utx, err := f.builder.BuildMint(context.Background(), token.MintParams{
		Owner:       owner,
		Mint:        token.MintInfo{Address: f.mint, Decimals: 6, Authority: &owner},
		Destination: token.Resolution{Address: ata, Owner: owner, Mint: f.mint},
		Amount:      1_000_000,
	})
	require.NoError(t, err)
	return utx
}

// recorder собирает переходы состояний.
type recorder struct {
	states []State
}

func (r *recorder) observe(state State, _ solana.Signature) {
	r.states = append(r.states, state)
}
