package contracts

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Addresses holds the statically configured contract addresses. Vesting,
// factory, and pair are absent on purpose: their addresses are derived at
// bind time.
type Addresses struct {
	Token            common.Address
	StakingPool      common.Address
	LiquidityManager common.Address
	OracleMonitor    common.Address
	Router           common.Address
}

// Registry is the bound contract set for one (account, generation). It is
// immutable after Bind: an account or chain change produces a whole new
// registry, never an in-place update.
type Registry struct {
	account    common.Address
	generation uint64

	token            *Handle
	stakingPool      *Handle
	vesting          *Handle
	liquidityManager *Handle
	oracleMonitor    *Handle
	router           *Handle
	factory          *Handle
	pair             *Handle
}

// Bind constructs handles for every configured contract and resolves the
// derived ones (vesting via the token, factory via the router, pair via the
// factory). Binding is partially fault tolerant: a derived handle that cannot
// be resolved is recorded as absent and its feature degrades, while the rest
// of the set binds normally.
func Bind(ctx context.Context, backend Backend, addrs Addresses, account common.Address, generation uint64, logger *zap.Logger) (*Registry, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := &Registry{account: account, generation: generation}

	tokenABI, err := TokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	stakingABI, err := StakingABI()
	if err != nil {
		return nil, fmt.Errorf("parse staking abi: %w", err)
	}
	managerABI, err := LiquidityManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse liquidity manager abi: %w", err)
	}
	oracleABI, err := OracleMonitorABI()
	if err != nil {
		return nil, fmt.Errorf("parse oracle monitor abi: %w", err)
	}
	routerABI, err := RouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}

	if addrs.Token == (common.Address{}) {
		return nil, fmt.Errorf("token address is required")
	}
	reg.token = newHandle("token", addrs.Token, tokenABI, account)

	if addrs.StakingPool != (common.Address{}) {
		reg.stakingPool = newHandle("staking", addrs.StakingPool, stakingABI, account)
	}
	if addrs.LiquidityManager != (common.Address{}) {
		reg.liquidityManager = newHandle("liquidity_manager", addrs.LiquidityManager, managerABI, account)
	}
	if addrs.OracleMonitor != (common.Address{}) {
		reg.oracleMonitor = newHandle("oracle_monitor", addrs.OracleMonitor, oracleABI, account)
	}
	if addrs.Router != (common.Address{}) {
		reg.router = newHandle("router", addrs.Router, routerABI, account)
	}

	reg.bindVesting(ctx, backend, logger)
	reg.bindAMM(ctx, backend, addrs.Token, logger)

	if !reg.IsBound() {
		return nil, fmt.Errorf("minimum contract set unavailable for account %s", account.Hex())
	}
	return reg, nil
}

// bindVesting resolves the vesting contract address from the token.
func (r *Registry) bindVesting(ctx context.Context, backend Backend, logger *zap.Logger) {
	values, err := r.token.Call(ctx, backend, "vesting")
	if err != nil {
		logger.Warn("vesting lookup failed, feature unavailable", zap.Error(err))
		return
	}
	address, err := AsAddress(values[0])
	if err != nil {
		logger.Warn("vesting lookup failed, feature unavailable", zap.Error(err))
		return
	}
	if address == (common.Address{}) {
		logger.Info("vesting contract not deployed")
		return
	}
	vestingABI, err := VestingABI()
	if err != nil {
		logger.Warn("parse vesting abi", zap.Error(err))
		return
	}
	r.vesting = newHandle("vesting", address, vestingABI, r.account)
}

// bindAMM resolves factory and pair handles through the router. Both lookups
// can fail off mainnet; each failure leaves only that handle absent.
func (r *Registry) bindAMM(ctx context.Context, backend Backend, token common.Address, logger *zap.Logger) {
	if r.router == nil {
		return
	}

	values, err := r.router.Call(ctx, backend, "factory")
	if err != nil {
		logger.Warn("factory lookup failed, AMM views unavailable", zap.Error(err))
		return
	}
	factoryAddr, err := AsAddress(values[0])
	if err != nil || factoryAddr == (common.Address{}) {
		logger.Warn("factory lookup returned no address")
		return
	}
	factoryABI, err := FactoryABI()
	if err != nil {
		logger.Warn("parse factory abi", zap.Error(err))
		return
	}
	r.factory = newHandle("factory", factoryAddr, factoryABI, r.account)

	values, err = r.router.Call(ctx, backend, "WETH")
	if err != nil {
		logger.Warn("WETH lookup failed, pair unavailable", zap.Error(err))
		return
	}
	weth, err := AsAddress(values[0])
	if err != nil {
		logger.Warn("WETH lookup failed, pair unavailable", zap.Error(err))
		return
	}

	values, err = r.factory.Call(ctx, backend, "getPair", token, weth)
	if err != nil {
		logger.Warn("getPair failed, pair unavailable", zap.Error(err))
		return
	}
	pairAddr, err := AsAddress(values[0])
	if err != nil {
		logger.Warn("getPair failed, pair unavailable", zap.Error(err))
		return
	}
	if pairAddr == (common.Address{}) {
		logger.Info("pair not created yet")
		return
	}
	pairABI, err := PairABI()
	if err != nil {
		logger.Warn("parse pair abi", zap.Error(err))
		return
	}
	r.pair = newHandle("pair", pairAddr, pairABI, r.account)
}

// IsBound reports whether the minimum required handle set is present: the
// token plus at least one feature contract.
func (r *Registry) IsBound() bool {
	if r.token == nil {
		return false
	}
	return r.stakingPool != nil || r.vesting != nil || r.liquidityManager != nil || r.oracleMonitor != nil
}

// Account reports the account every handle in the set is bound to.
func (r *Registry) Account() common.Address { return r.account }

// Generation identifies the bind this registry belongs to. Results computed
// against an older generation must be discarded, not stored.
func (r *Registry) Generation() uint64 { return r.generation }

// Accessors return nil for absent handles; consumers treat nil as "feature
// unavailable".

func (r *Registry) Token() *Handle            { return r.token }
func (r *Registry) StakingPool() *Handle      { return r.stakingPool }
func (r *Registry) Vesting() *Handle          { return r.vesting }
func (r *Registry) LiquidityManager() *Handle { return r.liquidityManager }
func (r *Registry) OracleMonitor() *Handle    { return r.oracleMonitor }
func (r *Registry) Router() *Handle           { return r.router }
func (r *Registry) Factory() *Handle          { return r.factory }
func (r *Registry) Pair() *Handle             { return r.pair }
