// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/programs/computebudget"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc/transaction"
)

type Config struct {
	Cluster                  string `mapstructure:"cluster"`
	RPCEndpoint              string `mapstructure:"rpc_endpoint"`
	KeypairPath              string `mapstructure:"keypair_path"`
	PrivateKey               string `mapstructure:"private_key"`
	Commitment               string `mapstructure:"commitment"`
	SkipPreflight            bool   `mapstructure:"skip_preflight"`
	PollIntervalMs           int    `mapstructure:"poll_interval_ms"`
	HistoryLimit             int    `mapstructure:"history_limit"`
	ConfirmMaxAttempts       int    `mapstructure:"confirm_max_attempts"`
	ConfirmInitialIntervalMs int    `mapstructure:"confirm_initial_interval_ms"`
	ConfirmMaxIntervalMs     int    `mapstructure:"confirm_max_interval_ms"`
	ComputeUnitLimit         uint32 `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice         uint64 `mapstructure:"compute_unit_price_micro_lamports"`
	DebugLogging             bool   `mapstructure:"debug_logging"`
	LogFile                  string `mapstructure:"log_file"`
}

const (
	EnvPrefix = "SPL_TOKEN"

	DefaultCluster                  = string(blockchain.ClusterDevnet)
	DefaultCommitment               = string(rpc.CommitmentConfirmed)
	DefaultPollIntervalMs           = 15000
	DefaultHistoryLimit             = 10
	DefaultConfirmMaxAttempts       = 30
	DefaultConfirmInitialIntervalMs = 500
	DefaultConfirmMaxIntervalMs     = 4000
)

// Public RPC endpoints per cluster.
const (
	DevnetRPC   = "https://api.devnet.solana.com"
	TestnetRPC  = "https://api.testnet.solana.com"
	MainnetRPC  = "https://api.mainnet-beta.solana.com"
	LocalnetRPC = "http://127.0.0.1:8899"
)

var defaults = map[string]interface{}{
	"cluster":                     DefaultCluster,
	"commitment":                  DefaultCommitment,
	"poll_interval_ms":            DefaultPollIntervalMs,
	"history_limit":               DefaultHistoryLimit,
	"confirm_max_attempts":        DefaultConfirmMaxAttempts,
	"confirm_initial_interval_ms": DefaultConfirmInitialIntervalMs,
	"confirm_max_interval_ms":     DefaultConfirmMaxIntervalMs,
}

// LoadConfig reads path (if non-empty), applies SPL_TOKEN_* environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	bindEnvironment(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, validateConfig(&cfg)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, _ := LoadConfig("")
	return cfg
}

func bindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows about.
	for _, key := range []string{
		"rpc_endpoint", "keypair_path", "private_key", "skip_preflight",
		"compute_unit_limit", "compute_unit_price_micro_lamports",
		"debug_logging", "log_file",
	} {
		_ = v.BindEnv(key)
	}
}

func validateConfig(cfg *Config) error {
	switch blockchain.Cluster(cfg.Cluster) {
	case blockchain.ClusterDevnet, blockchain.ClusterTestnet, blockchain.ClusterMainnet, blockchain.ClusterLocalnet:
	default:
		return fmt.Errorf("unknown cluster %q", cfg.Cluster)
	}
	if cfg.RPCEndpoint != "" {
		if err := validateURLWithCache(cfg.RPCEndpoint, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	switch rpc.CommitmentType(cfg.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.PollIntervalMs <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > 1000 {
		return errors.New("invalid history_limit")
	}
	if cfg.ConfirmMaxAttempts <= 0 {
		return errors.New("invalid confirm_max_attempts")
	}
	if cfg.ConfirmInitialIntervalMs <= 0 {
		return errors.New("invalid confirm_initial_interval_ms")
	}
	if cfg.ConfirmMaxIntervalMs < cfg.ConfirmInitialIntervalMs {
		return errors.New("confirm_max_interval_ms is below confirm_initial_interval_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// ClusterName returns the typed cluster.
func (c *Config) ClusterName() blockchain.Cluster {
	return blockchain.Cluster(c.Cluster)
}

// Endpoint returns the explicit RPC endpoint or the public one of the cluster.
func (c *Config) Endpoint() string {
	if c.RPCEndpoint != "" {
		return c.RPCEndpoint
	}
	switch c.ClusterName() {
	case blockchain.ClusterMainnet:
		return MainnetRPC
	case blockchain.ClusterTestnet:
		return TestnetRPC
	case blockchain.ClusterLocalnet:
		return LocalnetRPC
	default:
		return DevnetRPC
	}
}

func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// TransactionConfig maps the confirmation settings onto the submitter config.
func (c *Config) TransactionConfig() transaction.Config {
	return transaction.Config{
		SkipPreflight:   c.SkipPreflight,
		Commitment:      c.CommitmentType(),
		MaxAttempts:     uint(c.ConfirmMaxAttempts),
		InitialInterval: time.Duration(c.ConfirmInitialIntervalMs) * time.Millisecond,
		MaxInterval:     time.Duration(c.ConfirmMaxIntervalMs) * time.Millisecond,
	}
}

func (c *Config) ComputeBudget() computebudget.Config {
	return computebudget.Config{UnitLimit: c.ComputeUnitLimit, UnitPrice: c.ComputeUnitPrice}
}
