package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Client owns the wallet connection state: the active account and chain id.
// It is the only component that talks to the provider about accounts and
// networks; contract traffic goes through the provider directly.
type Client struct {
	provider Provider
	logger   *zap.Logger

	mu        sync.RWMutex
	connected bool
	account   common.Address
	chainID   *big.Int
}

func NewClient(provider Provider, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{provider: provider, logger: logger}
}

// Connect requests account access from the wallet and records the active
// account and chain id. The wallet surfaces its permission prompt during the
// eth_requestAccounts call; a decline maps to ErrUserRejected.
func (c *Client) Connect(ctx context.Context) (common.Address, *big.Int, error) {
	if c.provider == nil {
		return common.Address{}, nil, ErrProviderMissing
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return common.Address{}, nil, fmt.Errorf("request accounts: %w: wallet returned no accounts", ErrUserRejected)
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("chain id: %w", err)
	}

	c.mu.Lock()
	c.connected = true
	c.account = accounts[0]
	c.chainID = new(big.Int).Set(chainID)
	c.mu.Unlock()

	c.logger.Info("wallet connected",
		zap.String("account", accounts[0].Hex()),
		zap.Uint64("chain_id", chainID.Uint64()),
	)
	return accounts[0], chainID, nil
}

// EnsureNetwork switches the wallet to the expected chain. If the wallet does
// not know the chain it falls back to an add-chain request carrying the full
// network metadata. Either prompt declined maps to ErrNetworkSwitchRejected.
func (c *Client) EnsureNetwork(ctx context.Context, network NetworkConfig) error {
	c.mu.RLock()
	current := c.chainID
	c.mu.RUnlock()

	if current != nil && current.Uint64() == network.ChainID {
		return nil
	}

	if err := c.provider.SwitchChain(ctx, network.ChainID); err != nil {
		switch {
		case isChainUnknown(err):
			c.logger.Info("chain unknown to wallet, requesting add",
				zap.Uint64("chain_id", network.ChainID),
				zap.String("name", network.Name),
			)
			if err := c.provider.AddChain(ctx, network); err != nil {
				if isUserRejected(err) {
					return fmt.Errorf("add chain: %w", ErrNetworkSwitchRejected)
				}
				return fmt.Errorf("add chain: %w", err)
			}
		case isUserRejected(err):
			return fmt.Errorf("switch chain: %w", ErrNetworkSwitchRejected)
		default:
			return fmt.Errorf("switch chain: %w", err)
		}
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id after switch: %w", err)
	}

	c.mu.Lock()
	c.chainID = new(big.Int).Set(chainID)
	c.mu.Unlock()
	return nil
}

// Disconnect drops the local connection state. The wallet itself keeps its
// permissions; there is no provider-side disconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.connected = false
	c.account = common.Address{}
	c.chainID = nil
	c.mu.Unlock()
}

func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) Account() common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.account
}

func (c *Client) ChainID() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.chainID == nil {
		return nil
	}
	return new(big.Int).Set(c.chainID)
}

func (c *Client) setObserved(account common.Address, chainID *big.Int) {
	c.mu.Lock()
	c.account = account
	if chainID != nil {
		c.chainID = new(big.Int).Set(chainID)
	}
	c.mu.Unlock()
}
