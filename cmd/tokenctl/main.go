// cmd/tokenctl/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc"
	"github.com/oyevasu/spl-token-studio/internal/config"
	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/oyevasu/spl-token-studio/internal/logger"
	"github.com/oyevasu/spl-token-studio/internal/poller"
	"github.com/oyevasu/spl-token-studio/internal/service"
	"github.com/oyevasu/spl-token-studio/internal/wallet"
)

// Exit codes. An unknown outcome gets its own code so scripts can tell it
// apart from a definite failure.
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitUnknown = 3
)

const usage = `Usage: tokenctl [-config file] [-debug] <command> [flags]

Commands:
  create   -name NAME -symbol SYM -decimals N    create a new mint
  mint     -mint ADDRESS -amount X               mint to your own account
  send     -mint ADDRESS -to WALLET -amount X    send to another wallet
  balances                                       list SOL and token balances
  history  [-limit N] [-csv FILE]                recent transactions
  airdrop  -amount SOL                           devnet/testnet faucet
  watch                                          print balances on every poll
`

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *solbc.Client
	signer  *wallet.Wallet
	service *service.Service
	out     io.Writer
	logFile *logger.SafeFileWriter
}

func main() {
	os.Exit(run())
}

func run() int {
	global := flag.NewFlagSet("tokenctl", flag.ContinueOnError)
	configPath := global.String("config", "", "Path to config file (yaml or json)")
	debug := global.Bool("debug", false, "Enable debug logging")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(os.Args[1:]); err != nil {
		return exitUsage
	}
	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(*configPath, *debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		return exitFailed
	}
	defer a.close()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		return a.create(ctx, rest)
	case "mint":
		return a.mint(ctx, rest)
	case "send":
		return a.send(ctx, rest)
	case "balances":
		return a.balances(ctx)
	case "history":
		return a.history(ctx, rest)
	case "airdrop":
		return a.airdrop(ctx, rest)
	case "watch":
		return a.watch(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return exitUsage
	}
}

func newApp(configPath string, debug bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var (
		log  *zap.Logger
		file *logger.SafeFileWriter
	)
	if cfg.LogFile != "" {
		file, err = logger.NewSafeFileWriter(cfg.LogFile, time.Second, zap.NewNop())
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log = logger.CreateCLILogger(debug || cfg.DebugLogging, file)
	} else {
		log = logger.CreateCLILogger(debug || cfg.DebugLogging, nil)
	}

	signer, err := wallet.Open(cfg.KeypairPath, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	client := solbc.NewClient(cfg.Endpoint(), cfg.CommitmentType(), log)
	svc, err := service.New(service.Options{
		Ledger:    client,
		Wallet:    signer,
		Cluster:   cfg.ClusterName(),
		Submitter: cfg.TransactionConfig(),
		Budget:    cfg.ComputeBudget(),
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: log, client: client, signer: signer, service: svc, out: os.Stdout, logFile: file}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) create(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	name := fs.String("name", "", "Token name (kept locally)")
	symbol := fs.String("symbol", "", "Token symbol (kept locally)")
	decimals := fs.String("decimals", "", "Decimal places, 0-9 (default 9)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	res := a.service.CreateToken(ctx, service.CreateTokenRequest{Name: *name, Symbol: *symbol, Decimals: *decimals})
	if !res.OK {
		return a.fail(res.ErrorKind, res.Outcome, res.Message, res.Signature)
	}
	v := res.Value
	fmt.Fprintf(a.out, "✅ created mint %s (%d decimals)\n", v.Mint, v.Decimals)
	fmt.Fprintf(a.out, "   signature %s\n   %s\n", v.Signature, v.MintURL)
	return exitOK
}

func (a *app) mint(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	mint := fs.String("mint", "", "Mint address")
	amount := fs.String("amount", "", "Amount in display units")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	res := a.service.MintToken(ctx, service.MintTokenRequest{Mint: *mint, Amount: *amount})
	return a.receipt(res)
}

func (a *app) send(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	mint := fs.String("mint", "", "Mint address")
	to := fs.String("to", "", "Recipient wallet address")
	amount := fs.String("amount", "", "Amount in display units")
	decimals := fs.Int("decimals", -1, "Expected mint decimals; checked against the mint when set")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	req := service.SendTokenRequest{Mint: *mint, Recipient: *to, Amount: *amount}
	if *decimals >= 0 {
		d := uint8(*decimals)
		req.Decimals = &d
	}
	return a.receipt(a.service.SendToken(ctx, req))
}

func (a *app) receipt(res domain.Result[service.Receipt]) int {
	if !res.OK {
		return a.fail(res.ErrorKind, res.Outcome, res.Message, res.Signature)
	}
	r := res.Value
	verb := "minted"
	if r.Kind == domain.OperationSend {
		verb = "sent"
	}
	fmt.Fprintf(a.out, "✅ %s %s of %s to %s\n", verb, r.Display, r.Mint, r.Account)
	for _, created := range r.CreatedAccounts {
		fmt.Fprintf(a.out, "   created token account %s\n", created)
	}
	fmt.Fprintf(a.out, "   signature %s\n   %s\n", r.Signature, r.ExplorerURL)
	return exitOK
}

func (a *app) airdrop(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("airdrop", flag.ContinueOnError)
	amount := fs.String("amount", "1", "SOL to request")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	res := a.service.RequestAirdrop(ctx, *amount)
	if !res.OK {
		return a.fail(res.ErrorKind, res.Outcome, res.Message, res.Signature)
	}
	fmt.Fprintf(a.out, "✅ received %s SOL\n   signature %s\n   %s\n", res.Value.SOL, res.Value.Signature, res.Value.ExplorerURL)
	return exitOK
}

func (a *app) balances(ctx context.Context) int {
	snap, err := poller.FetchBalances(ctx, a.client, a.signer.PublicKey())
	if err != nil {
		return a.fail(domain.KindOf(err), domain.OutcomeFailed, err.Error(), solana.Signature{})
	}
	printBalances(a.out, snap)
	return exitOK
}

func (a *app) history(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", a.cfg.HistoryLimit, "Number of transactions")
	csvPath := fs.String("csv", "", "Append the entries to a CSV file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	snap, err := poller.FetchHistory(ctx, a.client, a.service.Explorer(), a.signer.PublicKey(), *limit)
	if err != nil {
		return a.fail(domain.KindOf(err), domain.OutcomeFailed, err.Error(), solana.Signature{})
	}

	for _, e := range snap.Entries {
		when := "-"
		if e.BlockTime != nil {
			when = e.BlockTime.Local().Format(time.DateTime)
		}
		status := e.Status
		if e.Failed() {
			status = "failed: " + e.Err
		}
		fmt.Fprintf(a.out, "%s  slot %-10d %-20s %s\n", when, e.Slot, status, e.Signature)
	}
	if len(snap.Entries) == 0 {
		fmt.Fprintln(a.out, "no transactions")
	}

	if *csvPath != "" {
		if err := writeHistoryCSV(*csvPath, snap, a.logger); err != nil {
			a.logger.Error("Failed to write CSV", zap.String("path", *csvPath), zap.Error(err))
			return exitFailed
		}
		a.logger.Info("History exported", zap.String("path", *csvPath), zap.Int("entries", len(snap.Entries)))
	}
	return exitOK
}

func (a *app) watch(ctx context.Context) int {
	scheduler := poller.NewScheduler(a.cfg.PollInterval(), a.logger)
	defer scheduler.Close()

	balances := poller.NewBalancePoller(a.client, scheduler, a.logger)
	sub := balances.Start(a.signer.PublicKey(), func(snap poller.BalanceSnapshot) {
		fmt.Fprintf(a.out, "--- %s\n", snap.FetchedAt.Local().Format(time.TimeOnly))
		printBalances(a.out, snap)
	})
	defer sub.Cancel()

	<-ctx.Done()
	return exitOK
}

func printBalances(w io.Writer, snap poller.BalanceSnapshot) {
	fmt.Fprintf(w, "wallet %s: %s SOL\n", snap.Owner, snap.SOL)
	for _, t := range snap.Tokens {
		fmt.Fprintf(w, "  %s  %s (decimals %d)\n", t.Mint, t.Display, t.Decimals)
	}
}

func writeHistoryCSV(path string, snap poller.HistorySnapshot, log *zap.Logger) (err error) {
	w, err := logger.NewSafeCSVWriter(path, []string{"signature", "slot", "block_time", "status", "error", "explorer_url"}, log)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()

	for _, e := range snap.Entries {
		when := ""
		if e.BlockTime != nil {
			when = e.BlockTime.UTC().Format(time.RFC3339)
		}
		record := []string{e.Signature.String(), strconv.FormatUint(e.Slot, 10), when, e.Status, e.Err, e.ExplorerURL}
		if err := w.WriteRecord(record); err != nil {
			return err
		}
	}
	return nil
}

// fail prints the error and maps its outcome to an exit code.
func (a *app) fail(kind domain.ErrorKind, outcome domain.Outcome, message string, sig solana.Signature) int {
	if outcome == domain.OutcomeUnknown {
		fmt.Fprintf(os.Stderr, "⚠ %s: %s\n", kind, message)
		if sig != (solana.Signature{}) {
			fmt.Fprintf(os.Stderr, "   status unknown, check %s\n", a.service.ExplorerTxURL(sig))
		}
		return exitUnknown
	}
	fmt.Fprintf(os.Stderr, "❌ %s: %s\n", kind, message)
	return exitFailed
}
