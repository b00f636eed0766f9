package dispatch

import (
	"errors"
	"fmt"
	"math/big"

	"astradash/internal/snapshot"
	"astradash/internal/units"
)

// Kind names a user-initiated write.
type Kind string

const (
	KindStake         Kind = "stake"
	KindWithdraw      Kind = "withdraw"
	KindClaim         Kind = "claim"
	KindAddLiquidity  Kind = "add_liquidity"
	KindRelease       Kind = "release"
	KindTriggerOracle Kind = "trigger_oracle"
	KindSetParams     Kind = "set_params"
)

// Params carries user input for an action. Amounts are decimal display
// strings; validation converts them to base units before anything touches
// the network.
type Params struct {
	Amount        string
	ETHAmount     string
	WindowSeconds uint64
	BurnAmount    string
}

var (
	// ErrInvalidInput is a local validation failure; it is raised before any
	// network call is made.
	ErrInvalidInput = errors.New("invalid input")
	// ErrFeatureUnavailable indicates the action's contract handle is absent
	// on this network.
	ErrFeatureUnavailable = errors.New("feature unavailable")
	// ErrReverted indicates the transaction was mined but reverted on chain.
	ErrReverted = errors.New("transaction reverted")
	// ErrTimeout indicates confirmation was not observed within the retry
	// budget.
	ErrTimeout = errors.New("confirmation timed out")
)

// amounts is the validated base-unit view of Params.
type amounts struct {
	token  *big.Int
	eth    *big.Int
	burn   *big.Int
	window uint64
}

func validate(kind Kind, params Params) (amounts, error) {
	var out amounts
	switch kind {
	case KindStake, KindWithdraw:
		value, err := parsePositive(params.Amount)
		if err != nil {
			return out, err
		}
		out.token = value
	case KindAddLiquidity:
		token, err := parsePositive(params.Amount)
		if err != nil {
			return out, err
		}
		eth, err := parsePositive(params.ETHAmount)
		if err != nil {
			return out, err
		}
		out.token = token
		out.eth = eth
	case KindSetParams:
		if params.WindowSeconds == 0 {
			return out, fmt.Errorf("%w: window seconds must be positive", ErrInvalidInput)
		}
		burn, err := parsePositive(params.BurnAmount)
		if err != nil {
			return out, err
		}
		out.burn = burn
		out.window = params.WindowSeconds
	case KindClaim, KindRelease, KindTriggerOracle:
		// No parameters.
	default:
		return out, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, kind)
	}
	return out, nil
}

func parsePositive(text string) (*big.Int, error) {
	value, err := units.ParseEther(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	return value, nil
}

// invalidatedSections maps an action to the snapshot sections its on-chain
// effect touches.
func invalidatedSections(kind Kind) []snapshot.Section {
	switch kind {
	case KindStake, KindWithdraw, KindClaim:
		return []snapshot.Section{snapshot.SectionStaking, snapshot.SectionToken}
	case KindAddLiquidity:
		return []snapshot.Section{snapshot.SectionLiquidity, snapshot.SectionToken}
	case KindRelease:
		return []snapshot.Section{snapshot.SectionVesting, snapshot.SectionToken}
	case KindTriggerOracle:
		return []snapshot.Section{snapshot.SectionOracle, snapshot.SectionToken}
	case KindSetParams:
		return []snapshot.Section{snapshot.SectionOracle}
	default:
		return nil
	}
}
