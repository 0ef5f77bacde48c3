// internal/ui/screen/screen_test.go
package screen

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/logger"
	"github.com/oyevasu/spl-token-studio/internal/poller"
	"github.com/oyevasu/spl-token-studio/internal/service"
	"github.com/oyevasu/spl-token-studio/internal/ui"
)

// fakeTokens records requests and answers with the configured functions.
type fakeTokens struct {
	mu       sync.Mutex
	mints    []service.MintTokenRequest
	sends    []service.SendTokenRequest
	forgot   []string
	mint     func(ctx context.Context) domain.Result[service.Receipt]
	sendable []poller.TokenBalance
	owner    solana.PublicKey
}

func (f *fakeTokens) CreateToken(ctx context.Context, req service.CreateTokenRequest) domain.Result[service.CreatedToken] {
	return domain.NewResult(service.CreatedToken{Symbol: req.Symbol, Mint: solana.NewWallet().PublicKey()}, nil)
}

func (f *fakeTokens) MintToken(ctx context.Context, req service.MintTokenRequest) domain.Result[service.Receipt] {
	f.mu.Lock()
	f.mints = append(f.mints, req)
	f.mu.Unlock()
	if f.mint != nil {
		return f.mint(ctx)
	}
	return domain.NewResult(service.Receipt{Kind: domain.OperationMint, Display: req.Amount}, nil)
}

func (f *fakeTokens) SendToken(ctx context.Context, req service.SendTokenRequest) domain.Result[service.Receipt] {
	f.mu.Lock()
	f.sends = append(f.sends, req)
	f.mu.Unlock()
	return domain.NewResult(service.Receipt{Kind: domain.OperationSend, Display: req.Amount}, nil)
}

func (f *fakeTokens) RequestAirdrop(ctx context.Context, solAmount string) domain.Result[service.Airdrop] {
	return domain.NewResult(service.Airdrop{SOL: solAmount}, nil)
}

func (f *fakeTokens) SendableTokens(ctx context.Context) domain.Result[[]poller.TokenBalance] {
	return domain.NewResult(f.sendable, nil)
}

func (f *fakeTokens) WalletAddress() solana.PublicKey { return f.owner }

func (f *fakeTokens) Cluster() blockchain.Cluster { return blockchain.ClusterDevnet }

func (f *fakeTokens) ExplorerTxURL(signature solana.Signature) string {
	return "https://explorer.test/tx/" + signature.String()
}

func (f *fakeTokens) Operations() []domain.PendingOperation { return nil }

func (f *fakeTokens) Forget(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgot = append(f.forgot, id)
	return true
}

func newServices(t *testing.T, tokens *fakeTokens) *ui.Services {
	t.Helper()
	if tokens.owner.IsZero() {
		tokens.owner = solana.NewWallet().PublicKey()
	}
	svc := &ui.Services{Tokens: tokens, Logger: zap.NewNop()}
	require.NoError(t, svc.Validate())
	return svc
}

// drain runs cmd and every command batched inside it, collecting messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func doneMsg(t *testing.T, msgs []tea.Msg) operationDoneMsg {
	t.Helper()
	for _, m := range msgs {
		if done, ok := m.(operationDoneMsg); ok {
			return done
		}
	}
	require.FailNow(t, "no operationDoneMsg among messages")
	return operationDoneMsg{}
}

func TestNewScreenRoutes(t *testing.T) {
	svc := newServices(t, &fakeTokens{})
	for _, route := range []ui.Route{
		ui.RouteDashboard, ui.RouteCreateToken, ui.RouteMintToken, ui.RouteSendToken,
		ui.RouteAirdrop, ui.RouteOperations, ui.RouteLogs,
	} {
		t.Run(route.String(), func(t *testing.T) {
			s := New(route, svc)
			require.NotNil(t, s)
			assert.Equal(t, route, s.Route())
		})
	}
}

func TestOperationScreenMint(t *testing.T) {
	tokens := &fakeTokens{}
	refreshed := 0
	svc := newServices(t, tokens)
	svc.Refresh = func() { refreshed++ }

	s := NewOperationScreen(ui.RouteMintToken, svc)
	mint := solana.NewWallet().PublicKey().String()
	s.form.SetFieldValue("mint", mint).SetFieldValue("amount", "2.5")

	cmd := s.submit()
	require.NotNil(t, cmd)
	assert.True(t, s.BlocksBack())

	done := doneMsg(t, drain(cmd))
	s.Update(done)

	assert.False(t, s.BlocksBack())
	require.NotNil(t, s.result)
	assert.True(t, s.result.OK)
	assert.Equal(t, 1, refreshed)
	assert.Empty(t, s.form.GetValue("amount"), "form resets after success")
	require.Len(t, tokens.mints, 1)
	assert.Equal(t, service.MintTokenRequest{Mint: mint, Amount: "2.5"}, tokens.mints[0])
	assert.Contains(t, s.View(), "Minted 2.5")
}

func TestOperationScreenInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mint   string
		amount string
	}{
		{"bad address", "not-a-key", "1"},
		{"missing amount", solana.NewWallet().PublicKey().String(), ""},
		{"too many dots", solana.NewWallet().PublicKey().String(), "1.2.3"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tokens := &fakeTokens{}
			s := NewOperationScreen(ui.RouteMintToken, newServices(t, tokens))
			s.form.SetFieldValue("mint", tc.mint).SetFieldValue("amount", tc.amount)

			assert.Nil(t, s.submit())
			assert.False(t, s.BlocksBack())
			assert.Empty(t, tokens.mints)
		})
	}
}

func TestOperationScreenEscCancels(t *testing.T) {
	started := make(chan struct{})
	tokens := &fakeTokens{
		mint: func(ctx context.Context) domain.Result[service.Receipt] {
			close(started)
			<-ctx.Done()
			return domain.NewResult(service.Receipt{}, domain.Wrap(domain.KindCanceled, ctx.Err(), "signature request canceled"))
		},
	}
	s := NewOperationScreen(ui.RouteMintToken, newServices(t, tokens))
	s.form.SetFieldValue("mint", solana.NewWallet().PublicKey().String()).SetFieldValue("amount", "1")

	cmd := s.submit()
	require.NotNil(t, cmd)

	msgs := make(chan []tea.Msg, 1)
	go func() { msgs <- drain(cmd) }()
	<-started

	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, s.BlocksBack(), "still running until the service returns")

	select {
	case out := <-msgs:
		s.Update(doneMsg(t, out))
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not observe cancellation")
	}

	assert.False(t, s.BlocksBack())
	require.NotNil(t, s.result)
	assert.Equal(t, domain.KindCanceled, s.result.ErrorKind)
	assert.Contains(t, s.View(), "Canceled")
}

func TestOperationScreenUnknownOutcome(t *testing.T) {
	sig := solana.Signature{1, 2, 3}
	tokens := &fakeTokens{
		mint: func(ctx context.Context) domain.Result[service.Receipt] {
			err := domain.Errorf(domain.KindConfirmationTimeout, "no confirmation; status unknown").WithSignature(sig)
			return domain.NewResult(service.Receipt{}, err)
		},
	}
	s := NewOperationScreen(ui.RouteMintToken, newServices(t, tokens))
	s.SetSize(100, 40)
	s.form.SetFieldValue("mint", solana.NewWallet().PublicKey().String()).SetFieldValue("amount", "1")

	s.Update(doneMsg(t, drain(s.submit())))

	require.NotNil(t, s.result)
	assert.False(t, s.result.OK)
	assert.Equal(t, domain.OutcomeUnknown, s.result.Outcome)
	assert.Equal(t, tokens.ExplorerTxURL(sig), s.result.URL)
	assert.Equal(t, "1", s.form.GetValue("amount"), "form keeps input after a failure")
	assert.Contains(t, s.View(), "Status unknown")
}

func TestSendScreenUsesListedDecimals(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	tokens := &fakeTokens{
		sendable: []poller.TokenBalance{{Mint: mint, Amount: 5_000_000, Decimals: 6, Display: "5"}},
	}
	s := NewOperationScreen(ui.RouteSendToken, newServices(t, tokens))

	msgs := drain(s.Init())
	require.Len(t, msgs, 1)
	s.Update(msgs[0])
	assert.Equal(t, mint.String(), s.form.GetValue("mint"))
	assert.Empty(t, s.loadErr)

	recipient := solana.NewWallet().PublicKey().String()
	s.form.SetFieldValue("recipient", recipient).SetFieldValue("amount", "1.25")
	s.Update(doneMsg(t, drain(s.submit())))

	require.Len(t, tokens.sends, 1)
	req := tokens.sends[0]
	assert.Equal(t, mint.String(), req.Mint)
	assert.Equal(t, recipient, req.Recipient)
	require.NotNil(t, req.Decimals)
	assert.Equal(t, uint8(6), *req.Decimals)
}

func TestSendScreenWithoutTokens(t *testing.T) {
	s := NewOperationScreen(ui.RouteSendToken, newServices(t, &fakeTokens{}))
	s.Update(sendableMsg{})
	assert.Contains(t, s.loadErr, "No token")
}

func TestOperationMsgAttachesID(t *testing.T) {
	tokens := &fakeTokens{
		mint: func(ctx context.Context) domain.Result[service.Receipt] {
			<-ctx.Done()
			return domain.NewResult(service.Receipt{}, domain.Wrap(domain.KindCanceled, ctx.Err(), "canceled"))
		},
	}
	svc := newServices(t, tokens)
	s := NewOperationScreen(ui.RouteMintToken, svc)
	s.form.SetFieldValue("mint", solana.NewWallet().PublicKey().String()).SetFieldValue("amount", "1")
	cmd := s.submit()
	require.NotNil(t, cmd)
	defer s.cancel()

	other := domain.NewPendingOperation(domain.OperationSend, nil)
	s.Update(ui.OperationMsg{Operation: *other})
	assert.Empty(t, s.opID)

	op := domain.NewPendingOperation(domain.OperationMint, nil)
	op.Status = domain.StatusAwaitingSignature
	svc.Cache.UpsertOperation(op.Clone())
	s.Update(ui.OperationMsg{Operation: op.Clone()})
	assert.Equal(t, op.ID, s.opID)
	assert.Contains(t, s.statusView(), "Waiting for wallet signature")
}

func TestOperationsScreenForget(t *testing.T) {
	tokens := &fakeTokens{}
	svc := newServices(t, tokens)

	running := domain.NewPendingOperation(domain.OperationMint, map[string]string{"amount": "1"})
	running.Status = domain.StatusSubmitting
	finished := domain.NewPendingOperation(domain.OperationCreate, map[string]string{"symbol": "MTK"})
	finished.Status = domain.StatusConfirmed
	finished.StartedAt = running.StartedAt.Add(-time.Minute)
	svc.Cache.UpsertOperation(running.Clone())
	svc.Cache.UpsertOperation(finished.Clone())

	s := NewOperationsScreen(svc)
	s.SetSize(120, 40)
	require.Equal(t, 2, s.table.RowCount())

	// newest first: the running operation is selected
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Empty(t, tokens.forgot)
	assert.Contains(t, s.notice, "Only finished")

	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, []string{finished.ID}, tokens.forgot)
	_, ok := svc.Cache.Operation(finished.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, s.table.RowCount())
}

func TestLogsScreenLevelFilter(t *testing.T) {
	buffer, err := logger.NewLogBuffer(50, "")
	require.NoError(t, err)
	require.NoError(t, buffer.Add("debug", "polling balances", nil))
	require.NoError(t, buffer.Add("info", "Transaction submitted", nil))
	require.NoError(t, buffer.Add("warn", "Confirmation timed out", nil))
	require.NoError(t, buffer.Add("error", "Failed to send transaction", nil))

	svc := newServices(t, &fakeTokens{})
	svc.Logs = buffer
	s := NewLogsScreen(svc)
	s.SetSize(100, 30)
	assert.Equal(t, 4, s.shown)

	tests := []struct {
		key  rune
		want int
	}{
		{'3', 2},
		{'4', 1},
		{'2', 3},
		{'0', 4},
	}
	for _, tc := range tests {
		s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tc.key}})
		assert.Equal(t, tc.want, s.shown, "filter %q", tc.key)
	}
}

func TestDashboardReadsCache(t *testing.T) {
	tokens := &fakeTokens{}
	svc := newServices(t, tokens)
	d := NewDashboardScreen(svc)
	d.SetSize(200, 40)
	assert.Equal(t, 0, d.tokens.RowCount())

	svc.Cache.SetBalances(poller.BalanceSnapshot{
		Owner:     tokens.owner,
		SOL:       "1.5",
		Tokens:    []poller.TokenBalance{{Mint: solana.NewWallet().PublicKey(), Decimals: 2, Display: "10"}},
		FetchedAt: time.Now(),
	})
	d.Update(ui.BalancesMsg{})
	assert.Equal(t, 1, d.tokens.RowCount())
	assert.Contains(t, d.View(), "1.5 SOL")

	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.RouterMsg{To: ui.RouteMintToken}, cmd())
}

