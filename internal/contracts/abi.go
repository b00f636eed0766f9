package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const tokenABIJSON = `[
  {"inputs": [], "name": "name", "outputs": [{"internalType": "string", "name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"internalType": "string", "name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "to", "type": "address"}, {"internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "transfer", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "spender", "type": "address"}, {"internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "approve", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "owner", "type": "address"}, {"internalType": "address", "name": "spender", "type": "address"}], "name": "allowance", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "vesting", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const stakingABIJSON = `[
  {"inputs": [{"internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "stake", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "withdraw", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [], "name": "claimReward", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "", "type": "address"}], "name": "stakers", "outputs": [{"internalType": "uint256", "name": "amount", "type": "uint256"}, {"internalType": "uint256", "name": "rewardDebt", "type": "uint256"}, {"internalType": "uint256", "name": "lastUpdated", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "user", "type": "address"}], "name": "pendingRewards", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalStaked", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const vestingABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "", "type": "address"}], "name": "schedules", "outputs": [{"internalType": "uint256", "name": "totalAmount", "type": "uint256"}, {"internalType": "uint256", "name": "released", "type": "uint256"}, {"internalType": "uint256", "name": "startTime", "type": "uint256"}, {"internalType": "uint256", "name": "lockDuration", "type": "uint256"}, {"internalType": "uint256", "name": "releaseDuration", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "user", "type": "address"}], "name": "releasableAmount", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "release", "outputs": [], "stateMutability": "nonpayable", "type": "function"}
]`

const liquidityManagerABIJSON = `[
  {"inputs": [{"internalType": "uint256", "name": "tokenAmountDesired", "type": "uint256"}, {"internalType": "uint256", "name": "amountTokenMin", "type": "uint256"}, {"internalType": "uint256", "name": "amountETHMin", "type": "uint256"}, {"internalType": "uint256", "name": "deadline", "type": "uint256"}], "name": "addLiquidityFromContract", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}, {"internalType": "uint256", "name": "", "type": "uint256"}, {"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "payable", "type": "function"},
  {"inputs": [], "name": "lastAddedAt", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "owner", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const oracleMonitorABIJSON = `[
  {"inputs": [], "name": "checkAndBurn", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [{"internalType": "uint256", "name": "_window", "type": "uint256"}, {"internalType": "uint256", "name": "_burnAmount", "type": "uint256"}], "name": "updateParams", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [], "name": "lastLiquidity", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "lastChecked", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "windowSeconds", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "burnAmount", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "owner", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const routerABIJSON = `[
  {"inputs": [], "name": "factory", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "WETH", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const factoryABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "tokenA", "type": "address"}, {"internalType": "address", "name": "tokenB", "type": "address"}], "name": "getPair", "outputs": [{"internalType": "address", "name": "pair", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const pairABIJSON = `[
  {"inputs": [], "name": "getReserves", "outputs": [{"internalType": "uint112", "name": "reserve0", "type": "uint112"}, {"internalType": "uint112", "name": "reserve1", "type": "uint112"}, {"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

type parsedABI struct {
	once sync.Once
	abi  abi.ABI
	err  error
}

func (p *parsedABI) get(source string) (abi.ABI, error) {
	p.once.Do(func() {
		p.abi, p.err = abi.JSON(strings.NewReader(source))
	})
	return p.abi, p.err
}

var (
	tokenParsed            parsedABI
	stakingParsed          parsedABI
	vestingParsed          parsedABI
	liquidityManagerParsed parsedABI
	oracleMonitorParsed    parsedABI
	routerParsed           parsedABI
	factoryParsed          parsedABI
	pairParsed             parsedABI
)

// TokenABI returns the parsed token interface.
func TokenABI() (abi.ABI, error) { return tokenParsed.get(tokenABIJSON) }

// StakingABI returns the parsed staking pool interface.
func StakingABI() (abi.ABI, error) { return stakingParsed.get(stakingABIJSON) }

// VestingABI returns the parsed vesting schedule interface.
func VestingABI() (abi.ABI, error) { return vestingParsed.get(vestingABIJSON) }

// LiquidityManagerABI returns the parsed liquidity manager interface.
func LiquidityManagerABI() (abi.ABI, error) { return liquidityManagerParsed.get(liquidityManagerABIJSON) }

// OracleMonitorABI returns the parsed oracle monitor interface.
func OracleMonitorABI() (abi.ABI, error) { return oracleMonitorParsed.get(oracleMonitorABIJSON) }

// RouterABI returns the parsed AMM router interface.
func RouterABI() (abi.ABI, error) { return routerParsed.get(routerABIJSON) }

// FactoryABI returns the parsed AMM factory interface.
func FactoryABI() (abi.ABI, error) { return factoryParsed.get(factoryABIJSON) }

// PairABI returns the parsed AMM pair interface.
func PairABI() (abi.ABI, error) { return pairParsed.get(pairABIJSON) }
