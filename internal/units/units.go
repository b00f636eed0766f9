package units

import (
	"fmt"
	"math/big"
	"strings"
)

// TokenDecimals is the fixed-point scale used by every contract in the set.
const TokenDecimals = 18

// Format converts a raw base-unit integer into a decimal string. The
// conversion is exact: no floating point is involved and trailing zeros are
// kept so the result parses back to the same integer.
func Format(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// FormatEther formats a base-unit amount at the standard 18-decimal scale.
func FormatEther(value *big.Int) string {
	return Format(value, TokenDecimals)
}

// Parse converts a decimal string into base units. The conversion is exact:
// inputs with more fractional digits than the scale allows are rejected
// rather than rounded.
func Parse(text string, decimals uint8) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty amount")
	}

	negative := false
	switch text[0] {
	case '-':
		negative = true
		text = text[1:]
	case '+':
		text = text[1:]
	}

	whole := text
	frac := ""
	if idx := strings.IndexByte(text, '.'); idx >= 0 {
		whole = text[:idx]
		frac = text[idx+1:]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount %q", text)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", text, decimals)
	}
	if whole == "" {
		whole = "0"
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", text)
	}
	if negative {
		value.Neg(value)
	}
	return value, nil
}

// ParseEther parses a decimal string at the standard 18-decimal scale.
func ParseEther(text string) (*big.Int, error) {
	return Parse(text, TokenDecimals)
}
