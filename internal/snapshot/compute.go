package snapshot

import "math/big"

// StakingShare returns the account's share of the pool as a percentage,
// zero when the pool is empty.
func StakingShare(staked, total *big.Int) float64 {
	return percentage(staked, total)
}

// ReleaseProgress returns how much of a vesting allocation has been released
// as a percentage, zero when the allocation is empty.
func ReleaseProgress(released, total *big.Int) float64 {
	return percentage(released, total)
}

func percentage(part, total *big.Int) float64 {
	if part == nil || total == nil || total.Sign() == 0 {
		return 0
	}
	rat := new(big.Rat).SetFrac(part, total)
	rat.Mul(rat, big.NewRat(100, 1))
	value, _ := rat.Float64()
	return value
}

// OracleEligibility reports whether the oracle check can fire now and how
// long until it can otherwise.
func OracleEligibility(lastChecked, windowSeconds, now uint64) (canTrigger bool, timeUntilNext uint64) {
	next := lastChecked + windowSeconds
	if now >= next {
		return true, 0
	}
	return false, next - now
}

// SpotPrice returns the ETH-per-token price from pair reserves. Callers must
// pass the reserves already matched to the tracked token's side; the price is
// only defined when both reserves are nonzero.
func SpotPrice(tokenReserve, ethReserve *big.Int) (float64, bool) {
	if tokenReserve == nil || ethReserve == nil || tokenReserve.Sign() == 0 || ethReserve.Sign() == 0 {
		return 0, false
	}
	rat := new(big.Rat).SetFrac(ethReserve, tokenReserve)
	value, _ := rat.Float64()
	return value, true
}
