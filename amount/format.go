package amount

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mintgate/x402/types"
)

// FormatOptions controls human-readable rendering of an atomic amount.
type FormatOptions struct {
	// Symbol is appended after the number (e.g. "USDC") when non-empty.
	Symbol string

	// Precision fixes the number of fractional digits. Negative means
	// full precision.
	Precision int

	// Compact renders large values with K/M/B/T suffixes.
	Compact bool

	// TrimZeros strips trailing fractional zeros after precision is
	// applied.
	TrimZeros bool
}

var compactSteps = []struct {
	threshold decimal.Decimal
	suffix    string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// Format renders an atomic-unit string at the given scale. The numeric
// value is exact up to the precision truncation the caller asked for.
func Format(atomic string, decimals int, opts FormatOptions) (string, error) {
	human, err := FromBaseUnits(atomic, decimals)
	if err != nil {
		return "", err
	}

	d, err := decimal.NewFromString(human)
	if err != nil {
		return "", types.Errorf(types.ErrInvalidFormat, "invalid amount: %q", human)
	}

	suffix := ""
	if opts.Compact {
		abs := d.Abs()
		for _, step := range compactSteps {
			if abs.GreaterThanOrEqual(step.threshold) {
				d = d.DivRound(step.threshold, 32)
				suffix = step.suffix
				break
			}
		}
	}

	var out string
	if opts.Precision >= 0 {
		out = d.StringFixed(int32(opts.Precision))
	} else {
		out = d.String()
	}

	if opts.TrimZeros && strings.Contains(out, ".") {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ".")
	}

	out += suffix
	if opts.Symbol != "" {
		out += " " + opts.Symbol
	}
	return out, nil
}
