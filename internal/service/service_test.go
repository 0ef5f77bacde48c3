// internal/service/service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/blockchaintest"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc/transaction"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/events"
	"github.com/oyevasu/spl-token-studio/internal/token"
	"github.com/oyevasu/spl-token-studio/internal/wallet"
)

// stubSigner signs with its key unless err or panicMsg is set.
type stubSigner struct {
	key      solana.PrivateKey
	err      error
	panicMsg string
	calls    int
	mu       sync.Mutex
}

func (s *stubSigner) PublicKey() solana.PublicKey { return s.key.PublicKey() }

func (s *stubSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return s.err
	}
	return wallet.PartialSign(tx, s.key)
}

type env struct {
	ledger  *blockchaintest.Ledger
	signer  *stubSigner
	service *Service
	owner   solana.PublicKey
}

func newEnv(t *testing.T, cluster blockchain.Cluster, bus *events.Bus) *env {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	signer := &stubSigner{key: key}
	ledger := blockchaintest.NewLedger()

	svc, err := New(Options{
		Ledger:  ledger,
		Wallet:  signer,
		Cluster: cluster,
		Submitter: transaction.Config{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
		},
		Bus:    bus,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return &env{ledger: ledger, signer: signer, service: svc, owner: key.PublicKey()}
}

func newMint(t *testing.T, e *env, decimals uint8, authority solana.PublicKey) solana.PublicKey {
	t.Helper()
	mint := solana.NewWallet().PublicKey()
	e.ledger.AddMint(mint, decimals, authority)
	return mint
}

func ptr(v uint8) *uint8 { return &v }

func assertNothingSent(t *testing.T, e *env) {
	t.Helper()
	assert.Empty(t, e.ledger.Sent())
	assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodGetRecentBlockhash))
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{Wallet: &stubSigner{}})
	assert.Equal(t, domain.KindLedgerUnavailable, domain.KindOf(err))

	_, err = New(Options{Ledger: blockchaintest.NewLedger()})
	assert.Equal(t, domain.KindWalletUnavailable, domain.KindOf(err))
}

func TestCreateToken(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)

	res := e.service.CreateToken(context.Background(), CreateTokenRequest{Name: " Studio ", Symbol: "STU", Decimals: ""})
	require.True(t, res.OK, res.Message)

	created := res.Value
	assert.False(t, created.Mint.IsZero())
	assert.Equal(t, "Studio", created.Name)
	assert.Equal(t, uint8(DefaultDecimals), created.Decimals)
	assert.Contains(t, created.ExplorerURL, "?cluster=devnet")
	assert.Contains(t, created.MintURL, created.Mint.String())

	sent := e.ledger.Sent()
	require.Len(t, sent, 1)
	assert.NoError(t, sent[0].VerifySignatures())

	op, ok := e.service.Pending(res.OperationID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusConfirmed, op.Status)
	assert.Equal(t, created.Signature, op.Signature)
	assert.Equal(t, "STU", op.Params["symbol"])
}

func TestCreateTokenInvalidDecimals(t *testing.T) {
	for _, decimals := range []string{"10", "-1", "six", "1.5"} {
		t.Run(decimals, func(t *testing.T) {
			e := newEnv(t, blockchain.ClusterDevnet, nil)
			res := e.service.CreateToken(context.Background(), CreateTokenRequest{Decimals: decimals})

			assert.False(t, res.OK)
			assert.Equal(t, domain.KindInvalidDecimals, res.ErrorKind)
			assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodGetMinimumBalance))
			assertNothingSent(t, e)

			op, _ := e.service.Pending(res.OperationID)
			assert.Equal(t, domain.StatusFailed, op.Status)
		})
	}
}

func TestMintToken(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mint := newMint(t, e, 6, e.owner)

	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1.5"})
	require.True(t, res.OK, res.Message)

	ata, err := token.Derive(e.owner, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), res.Value.Amount)
	assert.Equal(t, "1.5", res.Value.Display)
	assert.Equal(t, ata, res.Value.Account)
	assert.Equal(t, []solana.PublicKey{ata}, res.Value.CreatedAccounts)
	assert.Equal(t, e.owner, res.Value.Recipient)

	sent := e.ledger.Sent()
	require.Len(t, sent, 1)
	program, err := sent[0].ResolveProgramIDIndex(sent[0].Message.Instructions[0].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, program)
}

func TestMintTokenExistingAccountNotRecreated(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mint := newMint(t, e, 0, e.owner)
	e.ledger.AddTokenAccount(e.owner, mint, 1, 0)

	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "3.4"})
	require.True(t, res.OK, res.Message)
	assert.Equal(t, uint64(3), res.Value.Amount)
	assert.Empty(t, res.Value.CreatedAccounts)
	require.Len(t, e.ledger.Sent(), 1)
	assert.Len(t, e.ledger.Sent()[0].Message.Instructions, 1)
}

func TestMintTokenRejectedBeforeSubmission(t *testing.T) {
	stranger := solana.NewWallet().PublicKey()
	tests := []struct {
		name      string
		authority func(e *env) solana.PublicKey
		mint      func(m solana.PublicKey) string
		amount    string
		want      domain.ErrorKind
	}{
		{"bad address", nil, func(solana.PublicKey) string { return "not-a-key" }, "1", domain.KindInvalidAddress},
		{"empty address", nil, func(solana.PublicKey) string { return " " }, "1", domain.KindInvalidAddress},
		{"negative amount", nil, nil, "-1", domain.KindInvalidAmount},
		{"text amount", nil, nil, "lots", domain.KindInvalidAmount},
		{"zero amount", nil, nil, "0.0000001", domain.KindInvalidAmount},
		{"foreign authority", func(*env) solana.PublicKey { return stranger }, nil, "1", domain.KindMintAuthorityMismatch},
		{"unknown mint", nil, func(solana.PublicKey) string { return solana.NewWallet().PublicKey().String() }, "1", domain.KindAccountResolutionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, blockchain.ClusterDevnet, nil)
			authority := e.owner
			if tt.authority != nil {
				authority = tt.authority(e)
			}
			mint := newMint(t, e, 6, authority)
			mintText := mint.String()
			if tt.mint != nil {
				mintText = tt.mint(mint)
			}

			res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mintText, Amount: tt.amount})
			assert.False(t, res.OK)
			assert.Equal(t, tt.want, res.ErrorKind)
			assert.Equal(t, domain.OutcomeFailed, res.Outcome)
			assertNothingSent(t, e)
			assert.Zero(t, e.signer.calls)
		})
	}
}

func TestMintTokenValidationBeforeNetwork(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: "bad", Amount: "1"})
	assert.Equal(t, domain.KindInvalidAddress, res.ErrorKind)
	assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodGetMint))

	mint := newMint(t, e, 6, e.owner)
	res = e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1e3"})
	assert.Equal(t, domain.KindInvalidAmount, res.ErrorKind)
	assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodGetMint))
}

func TestSendToken(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mint := newMint(t, e, 6, e.owner)
	source := e.ledger.AddTokenAccount(e.owner, mint, 5_000_000, 6)
	recipient := solana.NewWallet().PublicKey()

	res := e.service.SendToken(context.Background(), SendTokenRequest{
		Mint:      mint.String(),
		Recipient: recipient.String(),
		Amount:    "2",
		Decimals:  ptr(6),
	})
	require.True(t, res.OK, res.Message)

	dest, err := token.Derive(recipient, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), res.Value.Amount)
	assert.Equal(t, recipient, res.Value.Recipient)
	assert.Equal(t, dest, res.Value.Account)
	assert.Equal(t, []solana.PublicKey{dest}, res.Value.CreatedAccounts)
	assert.NotEqual(t, source, dest)

	tx := e.ledger.Sent()[0]
	require.Len(t, tx.Message.Instructions, 2)
	last, err := tx.ResolveProgramIDIndex(tx.Message.Instructions[1].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.TokenProgramID, last)
}

func TestSendTokenUsesMintDecimalsWhenUnset(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mint := newMint(t, e, 9, solana.NewWallet().PublicKey())
	e.ledger.AddTokenAccount(e.owner, mint, 2_000_000_000, 9)

	res := e.service.SendToken(context.Background(), SendTokenRequest{
		Mint: mint.String(), Recipient: solana.NewWallet().PublicKey().String(), Amount: "1.5",
	})
	require.True(t, res.OK, res.Message)
	assert.Equal(t, uint64(1_500_000_000), res.Value.Amount)
}

func TestSendTokenDecimalsMismatch(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mint := newMint(t, e, 6, e.owner)
	e.ledger.AddTokenAccount(e.owner, mint, 5_000_000, 6)

	res := e.service.SendToken(context.Background(), SendTokenRequest{
		Mint: mint.String(), Recipient: solana.NewWallet().PublicKey().String(), Amount: "1", Decimals: ptr(9),
	})
	assert.Equal(t, domain.KindDecimalsMismatch, res.ErrorKind)
	assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodGetAccountInfo))
	assertNothingSent(t, e)
}

func TestSendTokenSourceChecks(t *testing.T) {
	t.Run("insufficient balance", func(t *testing.T) {
		e := newEnv(t, blockchain.ClusterDevnet, nil)
		mint := newMint(t, e, 2, e.owner)
		e.ledger.AddTokenAccount(e.owner, mint, 100, 2)

		res := e.service.SendToken(context.Background(), SendTokenRequest{
			Mint: mint.String(), Recipient: solana.NewWallet().PublicKey().String(), Amount: "1.01",
		})
		assert.Equal(t, domain.KindInsufficientBalance, res.ErrorKind)
		assert.Contains(t, res.Message, "balance 1 is below the requested 1.01")
		assertNothingSent(t, e)
	})

	t.Run("no source account", func(t *testing.T) {
		e := newEnv(t, blockchain.ClusterDevnet, nil)
		mint := newMint(t, e, 2, e.owner)

		res := e.service.SendToken(context.Background(), SendTokenRequest{
			Mint: mint.String(), Recipient: solana.NewWallet().PublicKey().String(), Amount: "1",
		})
		assert.Equal(t, domain.KindAccountResolutionFailed, res.ErrorKind)
		assertNothingSent(t, e)
	})

	t.Run("bad recipient", func(t *testing.T) {
		e := newEnv(t, blockchain.ClusterDevnet, nil)
		mint := newMint(t, e, 2, e.owner)

		res := e.service.SendToken(context.Background(), SendTokenRequest{Mint: mint.String(), Recipient: "0xdead", Amount: "1"})
		assert.Equal(t, domain.KindInvalidAddress, res.ErrorKind)
		assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodGetMint))
	})

	t.Run("zero with known decimals", func(t *testing.T) {
		e := newEnv(t, blockchain.ClusterDevnet, nil)
		mint := newMint(t, e, 2, e.owner)

		res := e.service.SendToken(context.Background(), SendTokenRequest{
			Mint: mint.String(), Recipient: solana.NewWallet().PublicKey().String(), Amount: "0.001", Decimals: ptr(2),
		})
		assert.Equal(t, domain.KindInvalidAmount, res.ErrorKind)
		assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodGetMint))
	})
}

func TestSigningDenied(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	e.signer.err = errors.New("signature request rejected")
	mint := newMint(t, e, 6, e.owner)

	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1"})
	assert.Equal(t, domain.KindSigningDenied, res.ErrorKind)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Empty(t, e.ledger.Sent())

	op, _ := e.service.Pending(res.OperationID)
	assert.Equal(t, domain.StatusFailed, op.Status)
	assert.Equal(t, domain.KindSigningDenied, op.ErrorKind)
}

func TestConfirmationTimeoutIsUnknown(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	e.ledger.Statuses = func(solana.Signature, int) *rpc.SignatureStatusesResult {
		return blockchaintest.Processed()
	}
	mint := newMint(t, e, 6, e.owner)

	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1"})
	assert.False(t, res.OK)
	assert.Equal(t, domain.KindConfirmationTimeout, res.ErrorKind)
	assert.Equal(t, domain.OutcomeUnknown, res.Outcome)
	require.Len(t, e.ledger.Sent(), 1)
	assert.Equal(t, e.ledger.Sent()[0].Signatures[0], res.Signature)

	op, _ := e.service.Pending(res.OperationID)
	assert.Equal(t, domain.StatusFailed, op.Status)
	assert.Equal(t, domain.OutcomeUnknown, op.Outcome)
	assert.Equal(t, res.Signature, op.Signature)
}

func TestTransactionFailedOnLedger(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	e.ledger.Statuses = func(solana.Signature, int) *rpc.SignatureStatusesResult {
		return blockchaintest.FailedWith(map[string]interface{}{
			"InstructionError": []interface{}{float64(1), map[string]interface{}{"Custom": float64(5)}},
		})
	}
	mint := newMint(t, e, 6, e.owner)

	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1"})
	assert.Equal(t, domain.KindTransactionFailed, res.ErrorKind)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Message, "fixed supply")
}

func TestLedgerUnavailable(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mint := newMint(t, e, 6, e.owner)
	e.ledger.SetError(blockchaintest.MethodGetMint, errors.New("connection refused"))

	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1"})
	assert.Equal(t, domain.KindLedgerUnavailable, res.ErrorKind)
	assert.Contains(t, res.Message, "connection refused")
}

func TestCanceledContext(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mint := newMint(t, e, 6, e.owner)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.service.MintToken(ctx, MintTokenRequest{Mint: mint.String(), Amount: "1"})
	assert.Equal(t, domain.KindCanceled, res.ErrorKind)
	assert.Empty(t, e.ledger.Sent())
}

func TestPanicBecomesInternal(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	e.signer.panicMsg = "wallet bridge crashed"
	mint := newMint(t, e, 6, e.owner)

	var res domain.Result[Receipt]
	require.NotPanics(t, func() {
		res = e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1"})
	})
	assert.Equal(t, domain.KindInternal, res.ErrorKind)
	assert.Contains(t, res.Message, "wallet bridge crashed")

	op, ok := e.service.Pending(res.OperationID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, op.Status)
}

func TestRequestAirdrop(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)

	res := e.service.RequestAirdrop(context.Background(), "1.5")
	require.True(t, res.OK, res.Message)
	assert.Equal(t, uint64(1_500_000_000), res.Value.Lamports)
	assert.Equal(t, "1.5", res.Value.SOL)
	assert.Equal(t, []uint64{1_500_000_000}, e.ledger.Airdrops())

	res = e.service.RequestAirdrop(context.Background(), "0")
	assert.Equal(t, domain.KindInvalidAmount, res.ErrorKind)
}

func TestRequestAirdropMainnet(t *testing.T) {
	e := newEnv(t, blockchain.ClusterMainnet, nil)

	res := e.service.RequestAirdrop(context.Background(), "1")
	assert.Equal(t, domain.KindAirdropUnavailable, res.ErrorKind)
	assert.Zero(t, e.ledger.CallCount(blockchaintest.MethodRequestAirdrop))
	assert.False(t, strings.Contains(e.service.ExplorerTxURL(solana.Signature{}), "cluster="))
}

func TestSendableTokens(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	full := newMint(t, e, 6, e.owner)
	empty := newMint(t, e, 6, e.owner)
	e.ledger.AddTokenAccount(e.owner, full, 10, 6)
	e.ledger.AddTokenAccount(e.owner, empty, 0, 6)

	res := e.service.SendableTokens(context.Background())
	require.True(t, res.OK)
	require.Len(t, res.Value, 1)
	assert.Equal(t, full, res.Value[0].Mint)
	assert.Equal(t, "0.00001", res.Value[0].Display)

	e.ledger.SetError(blockchaintest.MethodGetTokenAccountsByOwner, errors.New("timeout"))
	res = e.service.SendableTokens(context.Background())
	assert.Equal(t, domain.KindLedgerUnavailable, res.ErrorKind)
}

func TestOperationEventsInOrder(t *testing.T) {
	bus := events.NewBus(zap.NewNop(), 32)
	defer bus.Shutdown(context.Background())

	var (
		mu       sync.Mutex
		statuses []domain.Status
		done     = make(chan struct{})
	)
	sub := bus.SubscribeMany(events.OperationEventTypes, events.HandlerFunc(func(_ context.Context, ev events.Event) error {
		op := ev.(events.OperationEvent).Operation
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, op.Status)
		if op.Status.Terminal() {
			close(done)
		}
		return nil
	}))
	defer sub.Unsubscribe()

	e := newEnv(t, blockchain.ClusterDevnet, bus)
	mint := newMint(t, e, 6, e.owner)
	res := e.service.MintToken(context.Background(), MintTokenRequest{Mint: mint.String(), Amount: "1"})
	require.True(t, res.OK, res.Message)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no terminal event")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.Status{
		domain.StatusIdle,
		domain.StatusAwaitingSignature,
		domain.StatusSubmitting,
		domain.StatusConfirmed,
	}, statuses)
}

func TestForget(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	res := e.service.CreateToken(context.Background(), CreateTokenRequest{Decimals: "x"})

	assert.Len(t, e.service.Operations(), 1)
	assert.True(t, e.service.Forget(res.OperationID))
	assert.False(t, e.service.Forget(res.OperationID))
	_, ok := e.service.Pending(res.OperationID)
	assert.False(t, ok)
}

func TestOperationsNewestFirst(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	older := e.service.CreateToken(context.Background(), CreateTokenRequest{Decimals: "x"})
	time.Sleep(time.Millisecond)
	newer := e.service.CreateToken(context.Background(), CreateTokenRequest{Decimals: "y"})

	ops := e.service.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, newer.OperationID, ops[0].ID)
	assert.Equal(t, older.OperationID, ops[1].ID)
}

func TestConcurrentOperations(t *testing.T) {
	e := newEnv(t, blockchain.ClusterDevnet, nil)
	mintA := newMint(t, e, 6, e.owner)
	mintB := newMint(t, e, 3, e.owner)
	e.ledger.AddTokenAccount(e.owner, mintB, 10_000, 3)

	var wg sync.WaitGroup
	results := make([]domain.Result[Receipt], 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = e.service.MintToken(context.Background(), MintTokenRequest{Mint: mintA.String(), Amount: "7"})
	}()
	go func() {
		defer wg.Done()
		results[1] = e.service.SendToken(context.Background(), SendTokenRequest{
			Mint: mintB.String(), Recipient: solana.NewWallet().PublicKey().String(), Amount: "1.25",
		})
	}()
	wg.Wait()

	for _, r := range results {
		assert.True(t, r.OK, r.Message)
	}
	assert.Len(t, e.ledger.Sent(), 2)
	assert.Equal(t, int64(2), e.service.Metrics().Confirmed)
}
