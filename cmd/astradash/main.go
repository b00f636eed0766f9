package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"astradash/internal/app"
	"astradash/internal/config"
	"astradash/internal/tui"
	"astradash/internal/wallet"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "astradash",
		Short:        "Terminal dashboard for the Astra token contracts",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the dashboard",
		RunE:  runDashboard,
	}

	runCmd.Flags().String("wallet", "", "wallet RPC endpoint URL")
	runCmd.Flags().Uint64("chain-id", config.DefaultChainID, "target chain id")
	runCmd.Flags().String("network-name", "Ethereum Mainnet", "target network display name")
	runCmd.Flags().String("network-rpc", "", "public RPC URL offered when adding the chain to the wallet")
	runCmd.Flags().String("token", config.DefaultTokenAddr, "token contract address")
	runCmd.Flags().String("staking-pool", config.DefaultStakingAddr, "staking pool contract address")
	runCmd.Flags().String("liquidity-manager", config.DefaultLiquidityAddr, "liquidity manager contract address")
	runCmd.Flags().String("oracle-monitor", config.DefaultOracleAddr, "oracle monitor contract address")
	runCmd.Flags().String("router", config.DefaultRouterAddr, "AMM router contract address")
	runCmd.Flags().Duration("refresh-interval", config.DefaultRefreshInterval, "snapshot refresh interval")
	runCmd.Flags().Duration("event-poll", config.DefaultEventPoll, "wallet change poll interval")
	runCmd.Flags().Uint64("confirmations", config.DefaultConfirmations, "confirmation depth to wait for")
	runCmd.Flags().Duration("confirm-poll", config.DefaultConfirmPoll, "receipt poll interval")
	runCmd.Flags().Int("max-confirm-polls", config.DefaultMaxConfirmPolls, "maximum receipt polls per transaction")
	runCmd.Flags().Uint64("gas-limit", config.DefaultGasLimit, "gas limit for transactions, 0 lets the wallet estimate")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().String("log-file", "astradash.log", "log output path")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.WalletURL == "" {
		return fmt.Errorf("wallet endpoint is required")
	}
	if _, err := cfg.ContractAddresses(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := wallet.Dial(ctx, cfg.WalletURL)
	if err != nil {
		return fmt.Errorf("connect wallet endpoint: %w", err)
	}

	application := app.New(cfg, provider, logger)
	defer application.Close()

	logger.Info("astradash start",
		zap.String("wallet", cfg.WalletURL),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("token", cfg.Token),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
	)

	return tui.Start(ctx, application, version)
}

// newLogger writes structured logs to a file: the terminal belongs to the UI.
func newLogger(level, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}

	return cfg.Build()
}
