// internal/blockchain/blockchaintest/ledger.go
package blockchaintest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
)

// Method names accepted by SetError and CallCount.
const (
	MethodGetRecentBlockhash      = "GetRecentBlockhash"
	MethodGetMinimumBalance       = "GetMinimumBalanceForRentExemption"
	MethodGetAccountInfo          = "GetAccountInfo"
	MethodGetMint                 = "GetMint"
	MethodSendTransaction         = "SendTransactionWithOpts"
	MethodGetSignatureStatuses    = "GetSignatureStatuses"
	MethodGetBalance              = "GetBalance"
	MethodGetTokenAccountBalance  = "GetTokenAccountBalance"
	MethodGetTokenAccountsByOwner = "GetTokenAccountsByOwner"
	MethodGetSignaturesForAddress = "GetSignaturesForAddress"
	MethodRequestAirdrop          = "RequestAirdrop"
)

// StatusFunc scripts the status returned for sig on the given poll (1-based).
// A nil result means the ledger has not seen the signature yet.
type StatusFunc func(sig solana.Signature, poll int) *rpc.SignatureStatusesResult

// Ledger is an in-memory blockchain.Client for tests.
type Ledger struct {
	mu sync.Mutex

	Blockhash    solana.Hash
	RentLamports uint64

	// accounts maps an address to its owning program.
	accounts      map[solana.PublicKey]solana.PublicKey
	mints         map[solana.PublicKey]*token.Mint
	tokenBalances map[solana.PublicKey]blockchain.TokenAmount
	holdings      map[solana.PublicKey][]blockchain.TokenHolding
	lamports      map[solana.PublicKey]uint64
	signatures    map[solana.PublicKey][]blockchain.SignatureInfo

	errors map[string]error
	calls  map[string]int
	polls  map[solana.Signature]int

	// Statuses defaults to confirming every signature on the first poll.
	Statuses StatusFunc
	// OnCall runs before every method; a non-nil error is returned to the caller.
	OnCall func(ctx context.Context, method string) error

	sent     []*solana.Transaction
	airdrops []uint64
}

// NewLedger creates an empty stub ledger with a fixed blockhash.
func NewLedger() *Ledger {
	return &Ledger{
		Blockhash:     solana.Hash{9, 9, 9},
		RentLamports:  1_461_600,
		accounts:      make(map[solana.PublicKey]solana.PublicKey),
		mints:         make(map[solana.PublicKey]*token.Mint),
		tokenBalances: make(map[solana.PublicKey]blockchain.TokenAmount),
		holdings:      make(map[solana.PublicKey][]blockchain.TokenHolding),
		lamports:      make(map[solana.PublicKey]uint64),
		signatures:    make(map[solana.PublicKey][]blockchain.SignatureInfo),
		errors:        make(map[string]error),
		calls:         make(map[string]int),
		polls:         make(map[solana.Signature]int),
	}
}

var _ blockchain.Client = (*Ledger)(nil)

// AddMint registers an initialized mint with the given decimals and authority.
func (l *Ledger) AddMint(mint solana.PublicKey, decimals uint8, authority solana.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	auth := authority
	l.accounts[mint] = solana.TokenProgramID
	l.mints[mint] = &token.Mint{
		MintAuthority: &auth,
		Decimals:      decimals,
		IsInitialized: true,
	}
}

// AddTokenAccount creates the owner's associated token account for mint.
func (l *Ledger) AddTokenAccount(owner, mint solana.PublicKey, amount uint64, decimals uint8) solana.PublicKey {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		panic(err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[ata] = solana.TokenProgramID
	l.tokenBalances[ata] = blockchain.TokenAmount{Amount: amount, Decimals: decimals}
	l.holdings[owner] = append(l.holdings[owner], blockchain.TokenHolding{
		Account:  ata,
		Mint:     mint,
		Owner:    owner,
		Amount:   amount,
		Decimals: decimals,
	})
	return ata
}

// AddAccount registers an arbitrary account owned by program.
func (l *Ledger) AddAccount(address, program solana.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[address] = program
}

// SetLamports sets the SOL balance of address.
func (l *Ledger) SetLamports(address solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lamports[address] = lamports
}

// AddSignatures sets the history returned for address, newest first.
func (l *Ledger) AddSignatures(address solana.PublicKey, sigs []blockchain.SignatureInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signatures[address] = sigs
}

// SetError makes method fail with err until cleared with a nil err.
func (l *Ledger) SetError(method string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.errors, method)
		return
	}
	l.errors[method] = err
}

// CallCount returns how many times method was invoked.
func (l *Ledger) CallCount(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[method]
}

// Sent returns the transactions submitted so far.
func (l *Ledger) Sent() []*solana.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*solana.Transaction, len(l.sent))
	copy(out, l.sent)
	return out
}

// Airdrops returns the lamport amounts requested so far.
func (l *Ledger) Airdrops() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint64(nil), l.airdrops...)
}

func (l *Ledger) enter(ctx context.Context, method string) error {
	l.mu.Lock()
	l.calls[method]++
	err := l.errors[method]
	hook := l.OnCall
	l.mu.Unlock()

	if hook != nil {
		if hookErr := hook(ctx, method); hookErr != nil {
			return hookErr
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (l *Ledger) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := l.enter(ctx, MethodGetRecentBlockhash); err != nil {
		return solana.Hash{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Blockhash, nil
}

func (l *Ledger) GetMinimumBalanceForRentExemption(ctx context.Context, _ uint64) (uint64, error) {
	if err := l.enter(ctx, MethodGetMinimumBalance); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.RentLamports, nil
}

func (l *Ledger) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if err := l.enter(ctx, MethodGetAccountInfo); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.accounts[pubkey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{Owner: owner, Lamports: l.lamports[pubkey]},
	}, nil
}

func (l *Ledger) GetMint(ctx context.Context, mint solana.PublicKey) (*token.Mint, error) {
	if err := l.enter(ctx, MethodGetMint); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[mint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, mint)
	}
	cp := *m
	return &cp, nil
}

// SendTransactionWithOpts records tx and returns its first signature.
func (l *Ledger) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, _ blockchain.TransactionOptions) (solana.Signature, error) {
	if err := l.enter(ctx, MethodSendTransaction); err != nil {
		return solana.Signature{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, tx)
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("transaction has no signatures")
	}
	return tx.Signatures[0], nil
}

func (l *Ledger) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	if err := l.enter(ctx, MethodGetSignatureStatuses); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := &rpc.GetSignatureStatusesResult{}
	for _, sig := range signatures {
		l.polls[sig]++
		if l.Statuses != nil {
			out.Value = append(out.Value, l.Statuses(sig, l.polls[sig]))
			continue
		}
		out.Value = append(out.Value, Confirmed())
	}
	return out, nil
}

func (l *Ledger) GetBalance(ctx context.Context, pubkey solana.PublicKey, _ rpc.CommitmentType) (uint64, error) {
	if err := l.enter(ctx, MethodGetBalance); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lamports[pubkey], nil
}

func (l *Ledger) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (blockchain.TokenAmount, error) {
	if err := l.enter(ctx, MethodGetTokenAccountBalance); err != nil {
		return blockchain.TokenAmount{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.tokenBalances[account]
	if !ok {
		return blockchain.TokenAmount{}, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, account)
	}
	return bal, nil
}

func (l *Ledger) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]blockchain.TokenHolding, error) {
	if err := l.enter(ctx, MethodGetTokenAccountsByOwner); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]blockchain.TokenHolding(nil), l.holdings[owner]...), nil
}

func (l *Ledger) GetSignaturesForAddress(ctx context.Context, address solana.PublicKey, limit int) ([]blockchain.SignatureInfo, error) {
	if err := l.enter(ctx, MethodGetSignaturesForAddress); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	sigs := l.signatures[address]
	if limit > 0 && limit < len(sigs) {
		sigs = sigs[:limit]
	}
	return append([]blockchain.SignatureInfo(nil), sigs...), nil
}

func (l *Ledger) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	if err := l.enter(ctx, MethodRequestAirdrop); err != nil {
		return solana.Signature{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.airdrops = append(l.airdrops, lamports)
	l.lamports[pubkey] += lamports
	var sig solana.Signature
	sig[0] = byte(len(l.airdrops))
	copy(sig[1:], pubkey[:])
	return sig, nil
}

// Confirmed is a status at confirmed commitment without error.
func Confirmed() *rpc.SignatureStatusesResult {
	return &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}
}

// Processed is a status the ledger has seen but not yet confirmed.
func Processed() *rpc.SignatureStatusesResult {
	return &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusProcessed}
}

// FailedWith is a confirmed status carrying an on-ledger error.
func FailedWith(statusErr interface{}) *rpc.SignatureStatusesResult {
	return &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed, Err: statusErr}
}
