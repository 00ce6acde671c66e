package pricing

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/mintgate/x402/types"
)

// defaultMaxTimeoutSeconds is the authorization validity window baked into
// every requirement. Part of the signed payment domain.
const defaultMaxTimeoutSeconds = 60

// CreateExactRequirements assembles a complete "exact" scheme payment
// requirement for one network. On any resolution error no partial
// requirement is returned.
func CreateExactRequirements(price any, network types.Network, resource, description, payTo string) (*types.PaymentRequirements, error) {
	if !common.IsHexAddress(payTo) {
		return nil, types.Errorf(types.ErrConfigError, "payTo is not a valid address: %q", payTo)
	}

	resolved, err := ResolvePrice(price, network)
	if err != nil {
		return nil, err
	}

	return &types.PaymentRequirements{
		Scheme:            types.SchemeExact,
		Network:           network.String(),
		MaxAmountRequired: resolved.MaxAmountRequired,
		Resource:          resource,
		Description:       description,
		MimeType:          "",
		PayTo:             payTo,
		MaxTimeoutSeconds: defaultMaxTimeoutSeconds,
		Asset:             resolved.Asset.Address,
		OutputSchema:      nil,
		Extra: map[string]any{
			"name":    resolved.Asset.EIP712Name,
			"version": resolved.Asset.EIP712Version,
		},
	}, nil
}
