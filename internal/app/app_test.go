package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"astradash/internal/config"
	"astradash/internal/dispatch"
	"astradash/internal/session"
	"astradash/internal/snapshot"
	"astradash/internal/wallet"
)

type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

// fakeProvider is a minimal wallet endpoint. Contract reads fail, which the
// aggregator tolerates by marking sections unavailable; the session lifecycle
// is what these tests exercise.
type fakeProvider struct {
	mu        sync.Mutex
	accounts  []common.Address
	chainID   *big.Int
	switchErr error
	sends     int
	reads     []common.Address
	balances  int
}

func (f *fakeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts, nil
}

func (f *fakeProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts, nil
}

func (f *fakeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.chainID), nil
}

func (f *fakeProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.switchErr != nil {
		return f.switchErr
	}
	f.chainID = new(big.Int).SetUint64(chainID)
	return nil
}

func (f *fakeProvider) AddChain(ctx context.Context, network wallet.NetworkConfig) error {
	return fmt.Errorf("unexpected add chain")
}

func (f *fakeProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances++
	return big.NewInt(0), nil
}

func (f *fakeProvider) BlockNumber(ctx context.Context) (uint64, error) {
	return 100, nil
}

func (f *fakeProvider) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.To != nil {
		f.reads = append(f.reads, *msg.To)
	}
	return nil, fmt.Errorf("no contract state")
}

func (f *fakeProvider) SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	return common.Hash{}, fmt.Errorf("unexpected send")
}

func (f *fakeProvider) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

func (f *fakeProvider) Close() {}

func (f *fakeProvider) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = nil
	f.balances = 0
}

func (f *fakeProvider) readTargets() []common.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]common.Address, len(f.reads))
	copy(out, f.reads)
	return out
}

func (f *fakeProvider) balanceReads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances
}

var (
	userA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	userB = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func testConfig() config.Config {
	return config.Config{
		ChainID:          config.DefaultChainID,
		NetworkName:      "Ethereum Mainnet",
		Token:            config.DefaultTokenAddr,
		StakingPool:      config.DefaultStakingAddr,
		LiquidityManager: config.DefaultLiquidityAddr,
		OracleMonitor:    config.DefaultOracleAddr,
		Router:           config.DefaultRouterAddr,
		RefreshInterval:  time.Hour,
		EventPoll:        time.Hour,
		Confirmations:    1,
		ConfirmPoll:      time.Millisecond,
		MaxConfirmPolls:  2,
	}
}

func TestConnectLifecycle(t *testing.T) {
	provider := &fakeProvider{accounts: []common.Address{userA}, chainID: big.NewInt(1)}
	a := New(testConfig(), provider, nil)
	defer a.Disconnect()

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	state := a.Store().Session()
	if state.Status != session.StatusConnected {
		t.Fatalf("status = %v, want connected", state.Status)
	}
	if state.Account != userA {
		t.Fatalf("account = %s, want %s", state.Account.Hex(), userA.Hex())
	}
	if a.Store().Generation() != 1 {
		t.Fatalf("generation = %d, want 1", a.Store().Generation())
	}
	if _, ok := a.Store().Snapshot(); !ok {
		t.Fatal("connect must install an initial snapshot")
	}
	if !a.scheduler.Running() {
		t.Fatal("refresh loop must be running after connect")
	}
}

// The periodic tick refreshes only the view the user is looking at; full
// passes belong to connect and rebind.
func TestRefreshTickScopedToActiveView(t *testing.T) {
	provider := &fakeProvider{accounts: []common.Address{userA}, chainID: big.NewInt(1)}
	a := New(testConfig(), provider, nil)
	defer a.Disconnect()

	a.Store().SetActiveView(snapshot.SectionStaking)
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	provider.resetCalls()
	a.refreshTick(context.Background())

	targets := provider.readTargets()
	if len(targets) == 0 {
		t.Fatal("expected staking reads on tick")
	}
	staking := common.HexToAddress(config.DefaultStakingAddr)
	for _, to := range targets {
		if to != staking {
			t.Fatalf("tick read %s, want only the staking pool", to.Hex())
		}
	}
	if provider.balanceReads() != 0 {
		t.Fatal("tick read the token view while staking was active")
	}
}

func TestConnectSwitchesNetwork(t *testing.T) {
	provider := &fakeProvider{accounts: []common.Address{userA}, chainID: big.NewInt(5)}
	a := New(testConfig(), provider, nil)
	defer a.Disconnect()

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if got := a.Store().Session().ChainID.Uint64(); got != 1 {
		t.Fatalf("chain id = %d, want 1 after switch", got)
	}
}

func TestConnectSwitchRejected(t *testing.T) {
	provider := &fakeProvider{
		accounts:  []common.Address{userA},
		chainID:   big.NewInt(5),
		switchErr: &rpcError{code: 4001, msg: "user rejected"},
	}
	a := New(testConfig(), provider, nil)

	err := a.Connect(context.Background())
	if !errors.Is(err, wallet.ErrNetworkSwitchRejected) {
		t.Fatalf("err = %v, want ErrNetworkSwitchRejected", err)
	}
	if a.Store().Session().Status != session.StatusDisconnected {
		t.Fatal("session must roll back to disconnected")
	}
}

func TestConnectNoAccounts(t *testing.T) {
	provider := &fakeProvider{chainID: big.NewInt(1)}
	a := New(testConfig(), provider, nil)

	err := a.Connect(context.Background())
	if !errors.Is(err, wallet.ErrUserRejected) {
		t.Fatalf("err = %v, want ErrUserRejected", err)
	}
}

// An account change invalidates the bound contract set: the app rebinds under
// a new generation against the new account.
func TestAccountChangeRebinds(t *testing.T) {
	provider := &fakeProvider{accounts: []common.Address{userA}, chainID: big.NewInt(1)}
	a := New(testConfig(), provider, nil)
	defer a.Disconnect()

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	firstGen := a.Store().Generation()

	a.handleEvent(context.Background(), wallet.Event{
		Kind:    wallet.AccountChanged,
		Account: userB,
		ChainID: big.NewInt(1),
	})

	state := a.Store().Session()
	if state.Status != session.StatusConnected {
		t.Fatalf("status = %v, want connected after rebind", state.Status)
	}
	if state.Account != userB {
		t.Fatalf("account = %s, want %s", state.Account.Hex(), userB.Hex())
	}
	if a.Store().Generation() != firstGen+1 {
		t.Fatalf("generation = %d, want %d", a.Store().Generation(), firstGen+1)
	}
	if reg := a.registry(); reg == nil || reg.Account() != userB {
		t.Fatal("registry must be rebound to the new account")
	}
}

func TestWalletLockedEndsSession(t *testing.T) {
	provider := &fakeProvider{accounts: []common.Address{userA}, chainID: big.NewInt(1)}
	a := New(testConfig(), provider, nil)

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	a.handleEvent(context.Background(), wallet.Event{Kind: wallet.WalletLocked})

	if a.Store().Session().Status != session.StatusDisconnected {
		t.Fatal("session must end when the wallet locks")
	}
	if _, ok := a.Store().Snapshot(); ok {
		t.Fatal("snapshot must be cleared")
	}
	if a.scheduler.Running() {
		t.Fatal("refresh loop must stop")
	}
}

func TestDisconnect(t *testing.T) {
	provider := &fakeProvider{accounts: []common.Address{userA}, chainID: big.NewInt(1)}
	a := New(testConfig(), provider, nil)

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	a.Disconnect()

	if a.Store().Session().Status != session.StatusDisconnected {
		t.Fatal("status must be disconnected")
	}
	if a.registry() != nil {
		t.Fatal("registry must be dropped")
	}
	if a.scheduler.Running() {
		t.Fatal("refresh loop must stop")
	}
}

func TestExecuteWithoutSession(t *testing.T) {
	a := New(testConfig(), &fakeProvider{chainID: big.NewInt(1)}, nil)
	if _, err := a.Execute(context.Background(), dispatch.KindStake, dispatch.Params{Amount: "1"}); err == nil {
		t.Fatal("expected error without a session")
	}
}
