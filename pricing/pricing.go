// Package pricing turns price specifications into concrete atomic amounts
// and assembles network-scoped payment requirements.
package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mintgate/x402/amount"
	"github.com/mintgate/x402/types"
)

// AssetAmount is an explicit price: an atomic-unit amount of a specific
// asset. It passes through resolution unchanged, with no implicit rescaling.
type AssetAmount struct {
	Amount string
	Asset  types.AssetDescriptor
}

// ResolvedPrice is the outcome of price resolution: the atomic amount to
// require and the asset it is denominated in.
type ResolvedPrice struct {
	MaxAmountRequired string
	Asset             types.AssetDescriptor
}

// moneyPattern is the money grammar: optional leading "$", digits, at most
// two decimal places. Stricter than the general decimal grammar on purpose.
var moneyPattern = regexp.MustCompile(`^\$?\d+(\.\d{1,2})?$`)

// ResolvePrice resolves a price into an atomic amount plus asset descriptor.
// Accepted price forms are a money string ("$0.10", "1.50") resolved
// against the network's default stablecoin, or an AssetAmount passed
// through verbatim.
func ResolvePrice(price any, network types.Network) (*ResolvedPrice, error) {
	switch p := price.(type) {
	case string:
		return resolveMoney(p, network)
	case AssetAmount:
		return &ResolvedPrice{MaxAmountRequired: p.Amount, Asset: p.Asset}, nil
	case *AssetAmount:
		return &ResolvedPrice{MaxAmountRequired: p.Amount, Asset: p.Asset}, nil
	default:
		return nil, types.Errorf(types.ErrInvalidPrice, "unsupported price type %T", price)
	}
}

func resolveMoney(money string, network types.Network) (*ResolvedPrice, error) {
	if !moneyPattern.MatchString(money) {
		return nil, types.Errorf(types.ErrInvalidPrice, "invalid money amount: %q", money)
	}

	value := strings.TrimPrefix(money, "$")
	if _, err := decimal.NewFromString(value); err != nil {
		return nil, types.Errorf(types.ErrInvalidPrice, "invalid money amount: %q", money)
	}

	asset, err := types.GetDefaultAsset(network)
	if err != nil {
		return nil, err
	}

	// Exact scaling; a money string with more fractional digits than the
	// asset supports fails instead of silently truncating.
	atomic, err := amount.ToBaseUnits(value, asset.Decimals)
	if err != nil {
		return nil, err
	}

	return &ResolvedPrice{MaxAmountRequired: atomic, Asset: *asset}, nil
}
