package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"astradash/internal/config"
	"astradash/internal/contracts"
	"astradash/internal/dispatch"
	"astradash/internal/refresh"
	"astradash/internal/session"
	"astradash/internal/snapshot"
	"astradash/internal/wallet"
)

// App wires the wallet client, contract registry, aggregator, dispatcher, and
// refresh loop around one session store. It owns every lifecycle transition:
// connect, network switch, rebind on account or chain change, disconnect.
type App struct {
	cfg        config.Config
	provider   wallet.Provider
	client     *wallet.Client
	store      *session.Store
	aggregator *snapshot.Aggregator
	dispatcher *dispatch.Dispatcher
	scheduler  *refresh.Scheduler
	logger     *zap.Logger

	mu          sync.RWMutex
	reg         *contracts.Registry
	watchCancel context.CancelFunc
}

func New(cfg config.Config, provider wallet.Provider, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := session.NewStore()
	a := &App{
		cfg:        cfg,
		provider:   provider,
		client:     wallet.NewClient(provider, logger),
		store:      store,
		aggregator: snapshot.NewAggregator(provider, logger),
		logger:     logger,
	}
	a.dispatcher = dispatch.NewDispatcher(dispatch.Config{
		Confirmations: cfg.Confirmations,
		PollInterval:  cfg.ConfirmPoll,
		MaxPolls:      cfg.MaxConfirmPolls,
		GasLimit:      cfg.GasLimit,
	}, provider, store, logger)
	a.scheduler = refresh.NewScheduler(a.refreshTick, logger)
	return a
}

// Store exposes the session store for the UI to read.
func (a *App) Store() *session.Store {
	return a.store
}

// Connect runs the full session handshake: request accounts, ensure the
// target network, bind the contract set, take the first snapshot, and start
// the refresh loop and the wallet change watcher. Any failure rolls the
// session back to disconnected.
func (a *App) Connect(ctx context.Context) error {
	a.store.SetSession(session.State{Status: session.StatusConnecting})

	account, chainID, err := a.client.Connect(ctx)
	if err != nil {
		a.store.SetSession(session.State{Status: session.StatusDisconnected})
		return err
	}

	if err := a.client.EnsureNetwork(ctx, a.cfg.Network()); err != nil {
		a.client.Disconnect()
		a.store.SetSession(session.State{Status: session.StatusDisconnected})
		return err
	}
	chainID = a.client.ChainID()

	a.store.SetSession(session.State{
		Status:  session.StatusConnected,
		Account: account,
		ChainID: chainID,
	})

	if err := a.rebind(ctx); err != nil {
		a.client.Disconnect()
		a.store.SetSession(session.State{Status: session.StatusDisconnected})
		return err
	}

	a.scheduler.Start(ctx, a.cfg.RefreshInterval)
	a.startWatcher(ctx)
	return nil
}

// rebind opens a new snapshot generation and binds the contract set against
// the current account. Aggregations started under the previous generation
// are rejected by the store once this returns.
func (a *App) rebind(ctx context.Context) error {
	state := a.store.Session()
	if state.Status == session.StatusDisconnected {
		return fmt.Errorf("rebind without a session")
	}

	generation := a.store.NextGeneration()
	a.store.SetSession(session.State{
		Status:  session.StatusRebinding,
		Account: state.Account,
		ChainID: state.ChainID,
	})

	addrs, err := a.cfg.ContractAddresses()
	if err != nil {
		return err
	}
	reg, err := contracts.Bind(ctx, a.provider, addrs, state.Account, generation, a.logger)
	if err != nil {
		return fmt.Errorf("bind contracts: %w", err)
	}

	a.mu.Lock()
	a.reg = reg
	a.mu.Unlock()

	a.store.SetSession(session.State{
		Status:  session.StatusConnected,
		Account: state.Account,
		ChainID: state.ChainID,
	})

	a.RefreshAll(ctx)
	return nil
}

func (a *App) registry() *contracts.Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reg
}

// refreshTick is the scheduler callback: a section-scoped pass for whichever
// view the UI currently shows. Full passes are reserved for connect and
// rebind.
func (a *App) refreshTick(ctx context.Context) {
	a.RefreshSections(ctx, a.store.ActiveView())
}

// RefreshAll takes a full snapshot and installs it, subject to the
// generation fence.
func (a *App) RefreshAll(ctx context.Context) {
	reg := a.registry()
	if reg == nil {
		return
	}
	snap := a.aggregator.FetchAll(ctx, reg, reg.Account())
	if !a.store.ReplaceSnapshot(snap) {
		a.logger.Debug("discarded stale snapshot", zap.Uint64("generation", snap.Generation))
	}
}

// RefreshSections refreshes only the named sections, merging them into the
// stored snapshot.
func (a *App) RefreshSections(ctx context.Context, sections ...snapshot.Section) {
	reg := a.registry()
	if reg == nil || len(sections) == 0 {
		return
	}
	snap := a.aggregator.FetchSections(ctx, reg, reg.Account(), sections...)
	if !a.store.ReplaceSections(snap, sections...) {
		a.logger.Debug("discarded stale section refresh", zap.Uint64("generation", snap.Generation))
	}
}

// Execute runs one user action through the dispatcher and refreshes the
// sections its on-chain effect invalidated.
func (a *App) Execute(ctx context.Context, kind dispatch.Kind, params dispatch.Params) (dispatch.Result, error) {
	reg := a.registry()
	if reg == nil {
		return dispatch.Result{}, fmt.Errorf("not connected")
	}
	result, err := a.dispatcher.Execute(ctx, reg, kind, params)
	if err != nil {
		return dispatch.Result{}, err
	}
	a.RefreshSections(ctx, result.Sections...)
	return result, nil
}

// startWatcher consumes wallet change events until the session ends.
func (a *App) startWatcher(ctx context.Context) {
	watchCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	a.watchCancel = cancel
	a.mu.Unlock()

	events := a.client.Watch(watchCtx, a.cfg.EventPoll)
	go func() {
		for event := range events {
			a.handleEvent(watchCtx, event)
		}
	}()
}

// handleEvent reacts to a wallet-side change. Account and chain changes
// invalidate every binding, so both paths rebuild the registry under a new
// generation. A locked wallet ends the session.
func (a *App) handleEvent(ctx context.Context, event wallet.Event) {
	switch event.Kind {
	case wallet.WalletLocked:
		a.logger.Info("wallet locked, ending session")
		a.Disconnect()
	case wallet.AccountChanged, wallet.ChainChanged:
		a.store.SetSession(session.State{
			Status:  session.StatusRebinding,
			Account: event.Account,
			ChainID: event.ChainID,
		})
		if err := a.rebind(ctx); err != nil {
			a.logger.Error("rebind after wallet change failed", zap.Error(err))
			a.Disconnect()
		}
	}
}

// Disconnect stops the refresh loop and the watcher and clears the session.
// It may be called from the watcher goroutine itself, so it cancels the
// watcher without waiting for it; the event channel drains and closes on its
// own.
func (a *App) Disconnect() {
	a.scheduler.Stop()

	a.mu.Lock()
	cancel := a.watchCancel
	a.watchCancel = nil
	a.reg = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	a.client.Disconnect()
	a.store.SetSession(session.State{Status: session.StatusDisconnected})
}

// Close releases the provider connection.
func (a *App) Close() {
	a.Disconnect()
	if a.provider != nil {
		a.provider.Close()
	}
}
