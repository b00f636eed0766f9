package snapshot

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Section is one logical slice of the snapshot that can be refreshed
// independently.
type Section string

const (
	SectionToken     Section = "token"
	SectionStaking   Section = "staking"
	SectionVesting   Section = "vesting"
	SectionLiquidity Section = "liquidity"
	SectionOracle    Section = "oracle"
)

// AllSections lists every section in display order.
func AllSections() []Section {
	return []Section{SectionToken, SectionStaking, SectionVesting, SectionLiquidity, SectionOracle}
}

// TokenSection carries token metadata and the account balances. Amounts are
// decimal display strings; raw base units never leave the read boundary.
type TokenSection struct {
	Available   bool
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply string
	Balance     string
	ETHBalance  string
}

// StakingSection carries the account staking position.
type StakingSection struct {
	Available     bool
	Staked        string
	PendingReward string
	TotalStaked   string
	SharePercent  float64
	LastUpdated   uint64
}

// VestingSection carries the account vesting schedule. HasSchedule is false
// when the account has no allocation; Available is false when the vesting
// contract itself could not be read (or is not deployed).
type VestingSection struct {
	Available       bool
	HasSchedule     bool
	TotalAmount     string
	Released        string
	Releasable      string
	StartTime       uint64
	LockDuration    uint64
	ReleaseDuration uint64
	ProgressPercent float64
}

// LiquiditySection carries AMM pair reserves and manager state. HasPair is
// false while the pair has not been created; reserves then read as zero
// rather than erroring.
type LiquiditySection struct {
	Available    bool
	HasPair      bool
	PairAddress  common.Address
	TokenReserve string
	ETHReserve   string
	SpotPrice    float64
	HasSpotPrice bool
	LastAddedAt  uint64
	Owner        common.Address
}

// OracleSection carries the oracle monitor state and trigger eligibility.
type OracleSection struct {
	Available     bool
	LastLiquidity string
	LastChecked   uint64
	WindowSeconds uint64
	BurnAmount    string
	CanTrigger    bool
	TimeUntilNext uint64
	Owner         common.Address
}

// Snapshot is the aggregated read-only view of on-chain state at one point
// in time, tagged with the registry generation it was read against.
type Snapshot struct {
	Generation uint64
	Account    common.Address
	TakenAt    time.Time

	Token     TokenSection
	Staking   StakingSection
	Vesting   VestingSection
	Liquidity LiquiditySection
	Oracle    OracleSection
}
