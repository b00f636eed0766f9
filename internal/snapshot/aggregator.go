package snapshot

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"astradash/internal/contracts"
	"astradash/internal/units"
)

// Backend is the provider slice the aggregator needs: contract reads plus
// the native balance query.
type Backend interface {
	contracts.Backend
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// Aggregator issues the read calls behind every view and assembles them into
// a Snapshot. Sections are independent: one failing read group degrades to an
// unavailable marker instead of failing the whole fetch.
type Aggregator struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

func NewAggregator(backend Backend, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{backend: backend, logger: logger, now: time.Now}
}

// FetchAll reads every section concurrently and returns one Snapshot tagged
// with the registry's generation.
func (a *Aggregator) FetchAll(ctx context.Context, reg *contracts.Registry, account common.Address) Snapshot {
	return a.FetchSections(ctx, reg, account, AllSections()...)
}

// FetchSections reads only the named sections, concurrently. Sections not
// named stay zero-valued in the returned Snapshot; the caller merges them
// into prior state subtree by subtree.
func (a *Aggregator) FetchSections(ctx context.Context, reg *contracts.Registry, account common.Address, sections ...Section) Snapshot {
	snap := Snapshot{
		Generation: reg.Generation(),
		Account:    account,
		TakenAt:    a.now(),
	}

	var wg sync.WaitGroup
	for _, section := range sections {
		wg.Add(1)
		go func(section Section) {
			defer wg.Done()
			switch section {
			case SectionToken:
				snap.Token = a.fetchToken(ctx, reg, account)
			case SectionStaking:
				snap.Staking = a.fetchStaking(ctx, reg, account)
			case SectionVesting:
				snap.Vesting = a.fetchVesting(ctx, reg, account)
			case SectionLiquidity:
				snap.Liquidity = a.fetchLiquidity(ctx, reg)
			case SectionOracle:
				snap.Oracle = a.fetchOracle(ctx, reg)
			}
		}(section)
	}
	wg.Wait()

	return snap
}

func (a *Aggregator) fetchToken(ctx context.Context, reg *contracts.Registry, account common.Address) TokenSection {
	section := TokenSection{Decimals: units.TokenDecimals}
	token := reg.Token()
	if token == nil {
		return section
	}

	if values, err := token.Call(ctx, a.backend, "decimals"); err == nil {
		if decimals, err := contracts.AsUint8(values[0]); err == nil {
			section.Decimals = decimals
		}
	} else {
		a.logger.Warn("token decimals read failed", zap.Error(err))
	}

	values, err := token.Call(ctx, a.backend, "balanceOf", account)
	if err != nil {
		a.logger.Warn("token balance read failed", zap.Error(err))
		return section
	}
	balance, err := contracts.AsBigInt(values[0])
	if err != nil {
		a.logger.Warn("token balance decode failed", zap.Error(err))
		return section
	}
	section.Balance = units.Format(balance, section.Decimals)

	if values, err := token.Call(ctx, a.backend, "totalSupply"); err == nil {
		if supply, err := contracts.AsBigInt(values[0]); err == nil {
			section.TotalSupply = units.Format(supply, section.Decimals)
		}
	} else {
		a.logger.Warn("total supply read failed", zap.Error(err))
	}

	// Metadata failures degrade to empty strings, same as unnamed tokens.
	if values, err := token.Call(ctx, a.backend, "name"); err == nil {
		section.Name, _ = contracts.AsString(values[0])
	} else {
		a.logger.Debug("token name read failed", zap.Error(err))
	}
	if values, err := token.Call(ctx, a.backend, "symbol"); err == nil {
		section.Symbol, _ = contracts.AsString(values[0])
	} else {
		a.logger.Debug("token symbol read failed", zap.Error(err))
	}

	if eth, err := a.backend.BalanceAt(ctx, account); err == nil {
		section.ETHBalance = units.FormatEther(eth)
	} else {
		a.logger.Warn("eth balance read failed", zap.Error(err))
	}

	section.Available = true
	return section
}

func (a *Aggregator) fetchStaking(ctx context.Context, reg *contracts.Registry, account common.Address) StakingSection {
	section := StakingSection{}
	pool := reg.StakingPool()
	if pool == nil {
		return section
	}

	staked, rewardDebt, lastUpdated, err := a.readStakerInfo(ctx, pool, account)
	if err != nil {
		a.logger.Warn("staker info read failed", zap.Error(err))
		return section
	}
	_ = rewardDebt
	section.LastUpdated = lastUpdated

	pending := big.NewInt(0)
	if values, err := pool.Call(ctx, a.backend, "pendingRewards", account); err == nil {
		if v, err := contracts.AsBigInt(values[0]); err == nil {
			pending = v
		}
	} else {
		a.logger.Warn("pending rewards read failed", zap.Error(err))
	}

	values, err := pool.Call(ctx, a.backend, "totalStaked")
	if err != nil {
		a.logger.Warn("total staked read failed", zap.Error(err))
		return section
	}
	total, err := contracts.AsBigInt(values[0])
	if err != nil {
		return section
	}

	section.Staked = units.FormatEther(staked)
	section.PendingReward = units.FormatEther(pending)
	section.TotalStaked = units.FormatEther(total)
	section.SharePercent = StakingShare(staked, total)
	section.Available = true
	return section
}

func (a *Aggregator) readStakerInfo(ctx context.Context, pool *contracts.Handle, account common.Address) (staked, rewardDebt *big.Int, lastUpdated uint64, err error) {
	values, err := pool.Call(ctx, a.backend, "stakers", account)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(values) < 3 {
		return nil, nil, 0, fmt.Errorf("stakers returned %d values", len(values))
	}
	staked, err = contracts.AsBigInt(values[0])
	if err != nil {
		return nil, nil, 0, err
	}
	rewardDebt, err = contracts.AsBigInt(values[1])
	if err != nil {
		return nil, nil, 0, err
	}
	updated, err := contracts.AsBigInt(values[2])
	if err != nil {
		return nil, nil, 0, err
	}
	return staked, rewardDebt, updated.Uint64(), nil
}

func (a *Aggregator) fetchVesting(ctx context.Context, reg *contracts.Registry, account common.Address) VestingSection {
	section := VestingSection{}
	vesting := reg.Vesting()
	if vesting == nil {
		return section
	}

	values, err := vesting.Call(ctx, a.backend, "schedules", account)
	if err != nil {
		a.logger.Warn("vesting schedule read failed", zap.Error(err))
		return section
	}
	if len(values) < 5 {
		a.logger.Warn("vesting schedule decode failed", zap.Int("values", len(values)))
		return section
	}

	total, err := contracts.AsBigInt(values[0])
	if err != nil {
		return section
	}
	released, err := contracts.AsBigInt(values[1])
	if err != nil {
		return section
	}
	start, _ := contracts.AsBigInt(values[2])
	lock, _ := contracts.AsBigInt(values[3])
	duration, _ := contracts.AsBigInt(values[4])

	section.Available = true
	if total.Sign() == 0 {
		return section
	}

	releasable := big.NewInt(0)
	if values, err := vesting.Call(ctx, a.backend, "releasableAmount", account); err == nil {
		if v, err := contracts.AsBigInt(values[0]); err == nil {
			releasable = v
		}
	} else {
		a.logger.Warn("releasable amount read failed", zap.Error(err))
	}

	section.HasSchedule = true
	section.TotalAmount = units.FormatEther(total)
	section.Released = units.FormatEther(released)
	section.Releasable = units.FormatEther(releasable)
	if start != nil {
		section.StartTime = start.Uint64()
	}
	if lock != nil {
		section.LockDuration = lock.Uint64()
	}
	if duration != nil {
		section.ReleaseDuration = duration.Uint64()
	}
	section.ProgressPercent = ReleaseProgress(released, total)
	return section
}

func (a *Aggregator) fetchLiquidity(ctx context.Context, reg *contracts.Registry) LiquiditySection {
	section := LiquiditySection{TokenReserve: "0", ETHReserve: "0"}
	manager := reg.LiquidityManager()
	if manager == nil {
		return section
	}

	if values, err := manager.Call(ctx, a.backend, "lastAddedAt"); err == nil {
		if v, err := contracts.AsBigInt(values[0]); err == nil {
			section.LastAddedAt = v.Uint64()
		}
	} else {
		a.logger.Warn("lastAddedAt read failed", zap.Error(err))
	}
	if values, err := manager.Call(ctx, a.backend, "owner"); err == nil {
		section.Owner, _ = contracts.AsAddress(values[0])
	} else {
		a.logger.Warn("liquidity manager owner read failed", zap.Error(err))
	}
	section.Available = true

	// No pair yet: reserves stay zero instead of raising.
	pair := reg.Pair()
	if pair == nil {
		return section
	}
	section.PairAddress = pair.Address

	values, err := pair.Call(ctx, a.backend, "getReserves")
	if err != nil {
		a.logger.Warn("getReserves failed", zap.Error(err))
		return section
	}
	if len(values) < 2 {
		return section
	}
	reserve0, err := contracts.AsBigInt(values[0])
	if err != nil {
		return section
	}
	reserve1, err := contracts.AsBigInt(values[1])
	if err != nil {
		return section
	}

	// Reserve ordering follows the pair's token0, never an assumed side.
	values, err = pair.Call(ctx, a.backend, "token0")
	if err != nil {
		a.logger.Warn("token0 read failed", zap.Error(err))
		return section
	}
	token0, err := contracts.AsAddress(values[0])
	if err != nil {
		return section
	}

	tokenReserve, ethReserve := reserve0, reserve1
	if token0 != reg.Token().Address {
		tokenReserve, ethReserve = reserve1, reserve0
	}

	section.HasPair = true
	section.TokenReserve = units.FormatEther(tokenReserve)
	section.ETHReserve = units.FormatEther(ethReserve)
	section.SpotPrice, section.HasSpotPrice = SpotPrice(tokenReserve, ethReserve)
	return section
}

func (a *Aggregator) fetchOracle(ctx context.Context, reg *contracts.Registry) OracleSection {
	section := OracleSection{}
	oracle := reg.OracleMonitor()
	if oracle == nil {
		return section
	}

	lastChecked, err := a.readUint(ctx, oracle, "lastChecked")
	if err != nil {
		a.logger.Warn("lastChecked read failed", zap.Error(err))
		return section
	}
	window, err := a.readUint(ctx, oracle, "windowSeconds")
	if err != nil {
		a.logger.Warn("windowSeconds read failed", zap.Error(err))
		return section
	}

	section.LastChecked = lastChecked
	section.WindowSeconds = window
	section.CanTrigger, section.TimeUntilNext = OracleEligibility(lastChecked, window, uint64(a.now().Unix()))

	if values, err := oracle.Call(ctx, a.backend, "burnAmount"); err == nil {
		if v, err := contracts.AsBigInt(values[0]); err == nil {
			section.BurnAmount = units.FormatEther(v)
		}
	} else {
		a.logger.Warn("burnAmount read failed", zap.Error(err))
	}
	if values, err := oracle.Call(ctx, a.backend, "lastLiquidity"); err == nil {
		if v, err := contracts.AsBigInt(values[0]); err == nil {
			section.LastLiquidity = units.FormatEther(v)
		}
	} else {
		a.logger.Warn("lastLiquidity read failed", zap.Error(err))
	}
	if values, err := oracle.Call(ctx, a.backend, "owner"); err == nil {
		section.Owner, _ = contracts.AsAddress(values[0])
	} else {
		a.logger.Warn("oracle owner read failed", zap.Error(err))
	}

	section.Available = true
	return section
}

func (a *Aggregator) readUint(ctx context.Context, handle *contracts.Handle, method string) (uint64, error) {
	values, err := handle.Call(ctx, a.backend, method)
	if err != nil {
		return 0, err
	}
	v, err := contracts.AsBigInt(values[0])
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}
