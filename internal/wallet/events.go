package wallet

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ChangeKind identifies which part of the wallet state changed.
type ChangeKind int

const (
	AccountChanged ChangeKind = iota
	ChainChanged
	WalletLocked
)

// Event reports an account or chain change observed on the wallet. Either
// invalidates every contract binding, so consumers rebuild rather than patch.
type Event struct {
	Kind    ChangeKind
	Account common.Address
	ChainID *big.Int
}

// Watch polls the wallet for account and chain changes and delivers events
// until ctx is cancelled. Plain wallet RPC has no push channel for
// accountsChanged/chainChanged, so the subscription is a poll loop.
func (c *Client) Watch(ctx context.Context, interval time.Duration) <-chan Event {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	events := make(chan Event, 8)

	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if !c.Connected() {
				continue
			}
			if event, ok := c.observeChange(ctx); ok {
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events
}

func (c *Client) observeChange(ctx context.Context) (Event, bool) {
	accounts, err := c.provider.Accounts(ctx)
	if err != nil {
		c.logger.Warn("poll accounts failed", zap.Error(err))
		return Event{}, false
	}
	if len(accounts) == 0 {
		c.logger.Info("wallet reported no accounts")
		return Event{Kind: WalletLocked}, true
	}

	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		c.logger.Warn("poll chain id failed", zap.Error(err))
		return Event{}, false
	}

	prevAccount := c.Account()
	prevChain := c.ChainID()

	if prevChain != nil && prevChain.Cmp(chainID) != 0 {
		c.setObserved(accounts[0], chainID)
		c.logger.Info("chain changed",
			zap.Uint64("from", prevChain.Uint64()),
			zap.Uint64("to", chainID.Uint64()),
		)
		return Event{Kind: ChainChanged, Account: accounts[0], ChainID: chainID}, true
	}

	if accounts[0] != prevAccount {
		c.setObserved(accounts[0], chainID)
		c.logger.Info("account changed",
			zap.String("from", prevAccount.Hex()),
			zap.String("to", accounts[0].Hex()),
		)
		return Event{Kind: AccountChanged, Account: accounts[0], ChainID: chainID}, true
	}

	return Event{}, false
}
