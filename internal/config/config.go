package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"astradash/internal/contracts"
	"astradash/internal/wallet"
)

// Defaults for Ethereum mainnet and the deployed contract set.
const (
	DefaultChainID         = uint64(1)
	DefaultTokenAddr       = "0xe8174d551fd69c9ec98a09033c0885a2efbeb52c"
	DefaultStakingAddr     = "0xf035e4d39503c551b1503d7ee1e29826f80cf4b3"
	DefaultLiquidityAddr   = "0x18f98d0c305b6c7b2b272407ac5fa04a67df53c7"
	DefaultOracleAddr      = "0x5e4760f19dabec6711e46ec25d9a2aac50b63f2d"
	DefaultRouterAddr      = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	DefaultRefreshInterval = 30 * time.Second
	DefaultEventPoll       = 4 * time.Second
	DefaultConfirmations   = uint64(1)
	DefaultConfirmPoll     = 2 * time.Second
	DefaultMaxConfirmPolls = 60
	DefaultGasLimit        = uint64(300000)
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	WalletURL        string
	ChainID          uint64
	NetworkName      string
	NetworkRPCURL    string
	CurrencyName     string
	CurrencySymbol   string
	ExplorerURL      string
	Token            string
	StakingPool      string
	LiquidityManager string
	OracleMonitor    string
	Router           string
	RefreshInterval  time.Duration
	EventPoll        time.Duration
	Confirmations    uint64
	ConfirmPoll      time.Duration
	MaxConfirmPolls  int
	GasLimit         uint64
	LogLevel         string
	LogFile          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ASTRADASH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", DefaultChainID)
	v.SetDefault("network-name", "Ethereum Mainnet")
	v.SetDefault("currency-name", "Ether")
	v.SetDefault("currency-symbol", "ETH")
	v.SetDefault("explorer-url", "https://etherscan.io")
	v.SetDefault("token", DefaultTokenAddr)
	v.SetDefault("staking-pool", DefaultStakingAddr)
	v.SetDefault("liquidity-manager", DefaultLiquidityAddr)
	v.SetDefault("oracle-monitor", DefaultOracleAddr)
	v.SetDefault("router", DefaultRouterAddr)
	v.SetDefault("refresh-interval", DefaultRefreshInterval)
	v.SetDefault("event-poll", DefaultEventPoll)
	v.SetDefault("confirmations", DefaultConfirmations)
	v.SetDefault("confirm-poll", DefaultConfirmPoll)
	v.SetDefault("max-confirm-polls", DefaultMaxConfirmPolls)
	v.SetDefault("gas-limit", DefaultGasLimit)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-file", "astradash.log")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		WalletURL:        v.GetString("wallet"),
		ChainID:          v.GetUint64("chain-id"),
		NetworkName:      v.GetString("network-name"),
		NetworkRPCURL:    v.GetString("network-rpc"),
		CurrencyName:     v.GetString("currency-name"),
		CurrencySymbol:   v.GetString("currency-symbol"),
		ExplorerURL:      v.GetString("explorer-url"),
		Token:            v.GetString("token"),
		StakingPool:      v.GetString("staking-pool"),
		LiquidityManager: v.GetString("liquidity-manager"),
		OracleMonitor:    v.GetString("oracle-monitor"),
		Router:           v.GetString("router"),
		RefreshInterval:  v.GetDuration("refresh-interval"),
		EventPoll:        v.GetDuration("event-poll"),
		Confirmations:    v.GetUint64("confirmations"),
		ConfirmPoll:      v.GetDuration("confirm-poll"),
		MaxConfirmPolls:  v.GetInt("max-confirm-polls"),
		GasLimit:         v.GetUint64("gas-limit"),
		LogLevel:         v.GetString("log-level"),
		LogFile:          v.GetString("log-file"),
	}

	return cfg, nil
}

// Network builds the chain parameters handed to the wallet when asking it to
// switch or add the target network.
func (c Config) Network() wallet.NetworkConfig {
	return wallet.NetworkConfig{
		ChainID:          c.ChainID,
		Name:             c.NetworkName,
		RPCURL:           c.NetworkRPCURL,
		CurrencyName:     c.CurrencyName,
		CurrencySymbol:   c.CurrencySymbol,
		CurrencyDecimals: 18,
		ExplorerURL:      c.ExplorerURL,
	}
}

// ContractAddresses parses the configured contract addresses. The token
// address is required; the rest may be zero, disabling their features.
func (c Config) ContractAddresses() (contracts.Addresses, error) {
	var addrs contracts.Addresses
	fields := []struct {
		name  string
		value string
		out   *common.Address
	}{
		{"token", c.Token, &addrs.Token},
		{"staking-pool", c.StakingPool, &addrs.StakingPool},
		{"liquidity-manager", c.LiquidityManager, &addrs.LiquidityManager},
		{"oracle-monitor", c.OracleMonitor, &addrs.OracleMonitor},
		{"router", c.Router, &addrs.Router},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		if !common.IsHexAddress(field.value) {
			return contracts.Addresses{}, fmt.Errorf("invalid %s address %q", field.name, field.value)
		}
		*field.out = common.HexToAddress(field.value)
	}
	if addrs.Token == (common.Address{}) {
		return contracts.Addresses{}, fmt.Errorf("token address is required")
	}
	return addrs, nil
}
