// Package amount converts between human-readable decimal amounts and
// integer atomic units, and provides arbitrary-precision arithmetic on
// atomic-unit strings. Nothing in this package touches floating point:
// repeated aggregation over thousands of micro-payments must not
// accumulate rounding error.
package amount

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/mintgate/x402/types"
)

// MaxDecimals is the largest supported token decimal count (uint256 bound).
const MaxDecimals = 77

// decimalPattern matches an optionally signed decimal number. Leading-zero
// abuse ("01.5") is rejected separately.
var decimalPattern = regexp.MustCompile(`^-?\d+\.?\d*$`)

// atomicPattern matches a plain non-negative integer string.
var atomicPattern = regexp.MustCompile(`^\d+$`)

func validateDecimals(decimals int) error {
	if decimals < 0 || decimals > MaxDecimals {
		return types.Errorf(types.ErrInvalidDecimals, "decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}
	return nil
}

// ToBaseUnits converts a decimal string to an atomic-unit integer string.
// The fractional part may not exceed decimals digits; a leading zero is
// only valid as exactly "0" or "0.x".
func ToBaseUnits(value string, decimals int) (string, error) {
	if err := validateDecimals(decimals); err != nil {
		return "", err
	}
	if !decimalPattern.MatchString(value) {
		return "", types.Errorf(types.ErrInvalidFormat, "invalid decimal amount: %q", value)
	}

	digits := strings.TrimPrefix(value, "-")
	negative := strings.HasPrefix(value, "-")

	intPart, fracPart, _ := strings.Cut(digits, ".")
	if len(intPart) > 1 && intPart[0] == '0' {
		return "", types.Errorf(types.ErrInvalidFormat, "invalid leading zero in amount: %q", value)
	}
	if len(fracPart) > decimals {
		return "", types.Errorf(types.ErrPrecisionLoss,
			"amount %q has %d fractional digits, asset supports %d", value, len(fracPart), decimals)
	}

	// Right-pad the fraction to the full scale and parse the concatenated
	// digits as one big integer. Parsing removes incidental leading zeros.
	padded := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	n, ok := new(big.Int).SetString(padded, 10)
	if !ok {
		return "", types.Errorf(types.ErrInvalidFormat, "invalid decimal amount: %q", value)
	}

	if negative && n.Sign() != 0 {
		n.Neg(n)
	}
	return n.String(), nil
}

// FromBaseUnits converts an atomic-unit integer string back to a decimal
// string, trimming redundant trailing fractional zeros.
func FromBaseUnits(atomic string, decimals int) (string, error) {
	if err := validateDecimals(decimals); err != nil {
		return "", err
	}

	digits := strings.TrimPrefix(atomic, "-")
	negative := strings.HasPrefix(atomic, "-")
	if !atomicPattern.MatchString(digits) {
		return "", types.Errorf(types.ErrInvalidFormat, "invalid atomic amount: %q", atomic)
	}

	// Left-pad so there is always at least one integer digit to slice off.
	if len(digits) < decimals+1 {
		digits = strings.Repeat("0", decimals+1-len(digits)) + digits
	}

	split := len(digits) - decimals
	intPart := strings.TrimLeft(digits[:split], "0")
	if intPart == "" {
		intPart = "0"
	}
	fracPart := strings.TrimRight(digits[split:], "0")

	result := intPart
	if fracPart != "" {
		result += "." + fracPart
	}
	if negative && result != "0" {
		result = "-" + result
	}
	return result, nil
}

func parseAtomic(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(s, "-")
	if !atomicPattern.MatchString(digits) {
		return nil, types.Errorf(types.ErrInvalidFormat, "invalid atomic amount: %q", s)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, types.Errorf(types.ErrInvalidFormat, "invalid atomic amount: %q", s)
	}
	return n, nil
}

// Add sums two atomic-unit strings.
func Add(a, b string) (string, error) {
	x, err := parseAtomic(a)
	if err != nil {
		return "", err
	}
	y, err := parseAtomic(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(x, y).String(), nil
}

// Sub subtracts b from a, both atomic-unit strings.
func Sub(a, b string) (string, error) {
	x, err := parseAtomic(a)
	if err != nil {
		return "", err
	}
	y, err := parseAtomic(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Sub(x, y).String(), nil
}

// Cmp compares two atomic-unit strings, returning -1, 0 or 1.
func Cmp(a, b string) (int, error) {
	x, err := parseAtomic(a)
	if err != nil {
		return 0, err
	}
	y, err := parseAtomic(b)
	if err != nil {
		return 0, err
	}
	return x.Cmp(y), nil
}

// IsZero reports whether an atomic-unit string is zero.
func IsZero(a string) (bool, error) {
	x, err := parseAtomic(a)
	if err != nil {
		return false, err
	}
	return x.Sign() == 0, nil
}
