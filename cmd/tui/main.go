package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc"
	"github.com/oyevasu/spl-token-studio/internal/config"
	"github.com/oyevasu/spl-token-studio/internal/events"
	"github.com/oyevasu/spl-token-studio/internal/logger"
	"github.com/oyevasu/spl-token-studio/internal/poller"
	"github.com/oyevasu/spl-token-studio/internal/service"
	"github.com/oyevasu/spl-token-studio/internal/ui"
	"github.com/oyevasu/spl-token-studio/internal/ui/router"
	"github.com/oyevasu/spl-token-studio/internal/ui/screen"
	"github.com/oyevasu/spl-token-studio/internal/ui/state"
	"github.com/oyevasu/spl-token-studio/internal/wallet"
)

const (
	logBufferSize  = 2000
	uiChannelSize  = 256
	eventBufferLen = 128
	// finished operations older than this are dropped from the UI cache
	operationRetention = time.Hour
)

// AppModel owns the router, the shared clock and the update channel.
type AppModel struct {
	router *router.Router
	svc    *ui.Services
	inbox  <-chan tea.Msg
	width  int
	height int
	ticks  int
}

// NewAppModel creates the application model with the dashboard as root.
func NewAppModel(svc *ui.Services, inbox <-chan tea.Msg) *AppModel {
	return &AppModel{
		router: router.New(screen.NewDashboardScreen(svc)),
		svc:    svc,
		inbox:  inbox,
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		ui.ListenBus(m.inbox),
		screen.Clock(),
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ui.RouterMsg:
		return m, m.navigate(msg.To)

	case screen.ClockMsg:
		m.ticks++
		if m.ticks%60 == 0 {
			m.svc.Cache.CleanupFinished(operationRetention)
		}
		cmds = append(cmds, screen.Clock())

	case ui.OperationMsg:
		m.svc.Cache.UpsertOperation(msg.Operation)
		cmds = append(cmds, ui.ListenBus(m.inbox))

	case ui.BalancesMsg:
		m.svc.Cache.SetBalances(msg.Snapshot)
		cmds = append(cmds, ui.ListenBus(m.inbox))

	case ui.HistoryMsg:
		m.svc.Cache.SetHistory(msg.Snapshot)
		cmds = append(cmds, ui.ListenBus(m.inbox))

	case ui.ErrorMsg, ui.SuccessMsg:
		cmds = append(cmds, ui.ListenBus(m.inbox))
	}

	cmds = append(cmds, m.router.Update(msg))
	return m, tea.Batch(cmds...)
}

// navigate pushes the screen for route; the dashboard replaces the stack.
func (m *AppModel) navigate(route ui.Route) tea.Cmd {
	if route == ui.RouteDashboard {
		return m.router.PopToRoot()
	}
	next := screen.New(route, m.svc)
	if next == nil {
		return nil
	}
	return m.router.Push(next)
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml or json)")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(rootCtx, *configPath); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logBuffer, err := logger.NewLogBuffer(logBufferSize, "")
	if err != nil {
		return fmt.Errorf("failed to create log buffer: %w", err)
	}
	defer func() {
		_ = logBuffer.Close()
	}()

	var fileWriter *logger.SafeFileWriter
	if cfg.LogFile != "" {
		fileWriter, err = logger.NewSafeFileWriter(cfg.LogFile, 5*time.Second, zap.NewNop())
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			_ = fileWriter.Close()
		}()
	}

	var appLogger *zap.Logger
	if fileWriter != nil {
		appLogger, err = logger.CreateTUILoggerWithBuffer(cfg.DebugLogging, logBuffer, fileWriter)
	} else {
		appLogger, err = logger.CreateTUILoggerWithBuffer(cfg.DebugLogging, logBuffer, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	signer, err := wallet.Open(cfg.KeypairPath, cfg.PrivateKey)
	if err != nil {
		return err
	}

	appLogger.Info("🚀 Starting SPL Token Studio",
		zap.String("cluster", cfg.Cluster),
		zap.String("wallet", signer.String()))

	client := solbc.NewClient(cfg.Endpoint(), cfg.CommitmentType(), appLogger)
	bus := events.NewBus(appLogger, eventBufferLen)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = bus.Shutdown(shutdownCtx)
	}()

	tokens, err := service.New(service.Options{
		Ledger:    client,
		Wallet:    signer,
		Cluster:   cfg.ClusterName(),
		Submitter: cfg.TransactionConfig(),
		Budget:    cfg.ComputeBudget(),
		Bus:       bus,
		Logger:    appLogger,
	})
	if err != nil {
		return err
	}

	scheduler := poller.NewScheduler(cfg.PollInterval(), appLogger)
	defer scheduler.Close()
	balances := poller.NewBalancePoller(client, scheduler, appLogger)
	history := poller.NewHistoryPoller(client, scheduler, tokens.Explorer(), cfg.HistoryLimit, appLogger)

	sender := ui.NewUpdateSender(make(chan tea.Msg, uiChannelSize), appLogger)
	defer sender.Close()
	bridge := ui.NewBridge(sender)
	defer bridge.Close()

	owner := signer.PublicKey()
	bridge.Operations(bus)
	bridge.Balances(balances, owner)
	bridge.History(history, owner)

	svc := &ui.Services{
		Context:      ctx,
		Tokens:       tokens,
		Cache:        state.NewUICache(appLogger),
		Logs:         logBuffer,
		Logger:       appLogger,
		PollInterval: cfg.PollInterval(),
	}
	svc.Refresh = func() {
		go func() {
			fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if snap, err := poller.FetchBalances(fetchCtx, client, owner); err == nil {
				sender.SendUpdate(ui.BalancesMsg{Snapshot: snap})
			} else {
				appLogger.Warn("Refresh of balances failed", zap.Error(err))
			}
			if snap, err := poller.FetchHistory(fetchCtx, client, tokens.Explorer(), owner, cfg.HistoryLimit); err == nil {
				sender.SendUpdate(ui.HistoryMsg{Snapshot: snap})
			} else {
				appLogger.Warn("Refresh of history failed", zap.Error(err))
			}
		}()
	}
	if err := svc.Validate(); err != nil {
		return err
	}

	recovery := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		model := ui.NewSafeUIWrapper(NewAppModel(svc, sender.Messages()), appLogger)
		return model, []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithContext(ctx),
			tea.WithOutput(os.Stdout),
		}
	})

	err = recovery.RunWithRecovery(ctx)
	appLogger.Info("🛑 Shutting down SPL Token Studio")
	return err
}
