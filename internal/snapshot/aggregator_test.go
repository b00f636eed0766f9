package snapshot

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"astradash/internal/contracts"
	"astradash/internal/wallet"
)

var (
	tokenAddr   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	stakingAddr = common.HexToAddress("0x1000000000000000000000000000000000000002")
	managerAddr = common.HexToAddress("0x1000000000000000000000000000000000000003")
	oracleAddr  = common.HexToAddress("0x1000000000000000000000000000000000000004")
	routerAddr  = common.HexToAddress("0x1000000000000000000000000000000000000005")
	vestingAddr = common.HexToAddress("0x2000000000000000000000000000000000000001")
	factoryAddr = common.HexToAddress("0x2000000000000000000000000000000000000002")
	wethAddr    = common.HexToAddress("0x2000000000000000000000000000000000000003")
	pairAddr    = common.HexToAddress("0x2000000000000000000000000000000000000004")
	userAddr    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type fakeBackend struct {
	responses  map[string][]byte
	failures   map[string]error
	ethBalance *big.Int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses:  make(map[string][]byte),
		failures:   make(map[string]error),
		ethBalance: big.NewInt(0),
	}
}

func callKey(to common.Address, selector []byte) string {
	return fmt.Sprintf("%s:%x", to.Hex(), selector)
}

func (f *fakeBackend) respond(t *testing.T, to common.Address, contractABI abi.ABI, method string, values ...interface{}) {
	t.Helper()
	out, err := contractABI.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack outputs for %s: %v", method, err)
	}
	f.responses[callKey(to, contractABI.Methods[method].ID)] = out
}

func (f *fakeBackend) fail(to common.Address, contractABI abi.ABI, method string, err error) {
	f.failures[callKey(to, contractABI.Methods[method].ID)] = err
}

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("malformed call")
	}
	key := callKey(*msg.To, msg.Data[:4])
	if err, ok := f.failures[key]; ok {
		return nil, err
	}
	if resp, ok := f.responses[key]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("unexpected call %s", key)
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error) {
	return common.Hash{}, fmt.Errorf("unexpected send")
}

func (f *fakeBackend) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return new(big.Int).Set(f.ethBalance), nil
}

func mustABI(t *testing.T, get func() (abi.ABI, error)) abi.ABI {
	t.Helper()
	parsed, err := get()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	return parsed
}

func boundRegistry(t *testing.T, backend *fakeBackend) *contracts.Registry {
	t.Helper()
	backend.respond(t, tokenAddr, mustABI(t, contracts.TokenABI), "vesting", vestingAddr)
	backend.respond(t, routerAddr, mustABI(t, contracts.RouterABI), "factory", factoryAddr)
	backend.respond(t, routerAddr, mustABI(t, contracts.RouterABI), "WETH", wethAddr)
	backend.respond(t, factoryAddr, mustABI(t, contracts.FactoryABI), "getPair", pairAddr)

	reg, err := contracts.Bind(context.Background(), backend, contracts.Addresses{
		Token:            tokenAddr,
		StakingPool:      stakingAddr,
		LiquidityManager: managerAddr,
		OracleMonitor:    oracleAddr,
		Router:           routerAddr,
	}, userAddr, 1, nil)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	return reg
}

// Reserve sides follow the pair's token0 ordering, not an assumed position.
func TestFetchLiquidityReserveOrdering(t *testing.T) {
	backend := newFakeBackend()
	reg := boundRegistry(t, backend)

	managerABI := mustABI(t, contracts.LiquidityManagerABI)
	pairABI := mustABI(t, contracts.PairABI)
	backend.respond(t, managerAddr, managerABI, "lastAddedAt", big.NewInt(1700000000))
	backend.respond(t, managerAddr, managerABI, "owner", userAddr)
	// token0 is WETH, so reserve0 is the ETH side.
	backend.respond(t, pairAddr, pairABI, "getReserves", ether(2), ether(4000), uint32(0))
	backend.respond(t, pairAddr, pairABI, "token0", wethAddr)

	agg := NewAggregator(backend, nil)
	snap := agg.FetchSections(context.Background(), reg, userAddr, SectionLiquidity)

	s := snap.Liquidity
	if !s.Available || !s.HasPair {
		t.Fatalf("liquidity section = %+v, want available with pair", s)
	}
	if s.TokenReserve != "4000.000000000000000000" {
		t.Fatalf("token reserve = %s", s.TokenReserve)
	}
	if s.ETHReserve != "2.000000000000000000" {
		t.Fatalf("eth reserve = %s", s.ETHReserve)
	}
	if !s.HasSpotPrice || s.SpotPrice != 0.0005 {
		t.Fatalf("spot price = %v (%v)", s.SpotPrice, s.HasSpotPrice)
	}
	if snap.Generation != reg.Generation() {
		t.Fatalf("snapshot generation = %d, want %d", snap.Generation, reg.Generation())
	}
}

// One failing section degrades to unavailable without poisoning the others.
func TestFetchSectionDegradesIndependently(t *testing.T) {
	backend := newFakeBackend()
	reg := boundRegistry(t, backend)

	tokenABI := mustABI(t, contracts.TokenABI)
	backend.respond(t, tokenAddr, tokenABI, "decimals", uint8(18))
	backend.respond(t, tokenAddr, tokenABI, "balanceOf", ether(7))
	backend.respond(t, tokenAddr, tokenABI, "totalSupply", ether(1000000))
	backend.respond(t, tokenAddr, tokenABI, "name", "Astra")
	backend.respond(t, tokenAddr, tokenABI, "symbol", "ASTR")
	backend.ethBalance = ether(3)

	backend.fail(stakingAddr, mustABI(t, contracts.StakingABI), "stakers", fmt.Errorf("execution reverted"))

	agg := NewAggregator(backend, nil)
	snap := agg.FetchSections(context.Background(), reg, userAddr, SectionToken, SectionStaking)

	if !snap.Token.Available {
		t.Fatalf("token section = %+v, want available", snap.Token)
	}
	if snap.Token.Balance != "7.000000000000000000" {
		t.Fatalf("balance = %s", snap.Token.Balance)
	}
	if snap.Token.ETHBalance != "3.000000000000000000" {
		t.Fatalf("eth balance = %s", snap.Token.ETHBalance)
	}
	if snap.Staking.Available {
		t.Fatal("staking section must degrade to unavailable")
	}
}

func TestFetchStakingShare(t *testing.T) {
	backend := newFakeBackend()
	reg := boundRegistry(t, backend)

	stakingABI := mustABI(t, contracts.StakingABI)
	backend.respond(t, stakingAddr, stakingABI, "stakers", ether(50), big.NewInt(0), big.NewInt(1700000000))
	backend.respond(t, stakingAddr, stakingABI, "pendingRewards", ether(1))
	backend.respond(t, stakingAddr, stakingABI, "totalStaked", ether(200))

	agg := NewAggregator(backend, nil)
	snap := agg.FetchSections(context.Background(), reg, userAddr, SectionStaking)

	s := snap.Staking
	if !s.Available {
		t.Fatalf("staking section = %+v, want available", s)
	}
	if s.SharePercent != 25 {
		t.Fatalf("share = %v, want 25", s.SharePercent)
	}
	if s.Staked != "50.000000000000000000" || s.TotalStaked != "200.000000000000000000" {
		t.Fatalf("staked = %s, total = %s", s.Staked, s.TotalStaked)
	}
}

// A zero schedule means the vesting contract is readable but this account has
// no allocation.
func TestFetchVestingNoSchedule(t *testing.T) {
	backend := newFakeBackend()
	reg := boundRegistry(t, backend)

	vestingABI := mustABI(t, contracts.VestingABI)
	backend.respond(t, vestingAddr, vestingABI, "schedules",
		big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0))

	agg := NewAggregator(backend, nil)
	snap := agg.FetchSections(context.Background(), reg, userAddr, SectionVesting)

	if !snap.Vesting.Available {
		t.Fatal("vesting must be available")
	}
	if snap.Vesting.HasSchedule {
		t.Fatal("zero schedule must read as no allocation")
	}
}
