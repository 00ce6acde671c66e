package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/x402/types"
)

const payee = "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"

func TestCreateExactRequirements(t *testing.T) {
	req, err := CreateExactRequirements("$0.10", types.NetworkBaseSepolia, "tool://x", "desc", payee)
	require.NoError(t, err)

	assert.Equal(t, "exact", req.Scheme)
	assert.Equal(t, "base-sepolia", req.Network)
	assert.Equal(t, "100000", req.MaxAmountRequired)
	assert.Equal(t, "tool://x", req.Resource)
	assert.Equal(t, "desc", req.Description)
	assert.Equal(t, "", req.MimeType)
	assert.Equal(t, payee, req.PayTo)
	assert.Equal(t, 60, req.MaxTimeoutSeconds)
	assert.Equal(t, "0x036CbD53842c5426634e7929541eC2318f3dCF7e", req.Asset)
	assert.Nil(t, req.OutputSchema)
	assert.Equal(t, map[string]any{"name": "USDC", "version": "2"}, req.Extra)
}

// Building the same requirement twice yields identical results; the fields
// are part of the signed payment domain.
func TestCreateExactRequirementsDeterministic(t *testing.T) {
	a, err := CreateExactRequirements("$0.10", types.NetworkBaseSepolia, "tool://x", "desc", payee)
	require.NoError(t, err)
	b, err := CreateExactRequirements("$0.10", types.NetworkBaseSepolia, "tool://x", "desc", payee)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCreateExactRequirementsPerNetworkExtra(t *testing.T) {
	req, err := CreateExactRequirements("$1", types.NetworkIoTeX, "tool://x", "", payee)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Bridged USDC", "version": "2"}, req.Extra)
}

func TestCreateExactRequirementsBadPrice(t *testing.T) {
	_, err := CreateExactRequirements("$0.999", types.NetworkBaseSepolia, "tool://x", "", payee)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidPrice, types.ErrorCode(err))
}

func TestCreateExactRequirementsBadNetwork(t *testing.T) {
	_, err := CreateExactRequirements("$0.10", types.Network("solana"), "tool://x", "", payee)
	require.Error(t, err)
	assert.Equal(t, types.ErrUnsupportedNetwork, types.ErrorCode(err))
}

func TestCreateExactRequirementsBadPayTo(t *testing.T) {
	_, err := CreateExactRequirements("$0.10", types.NetworkBaseSepolia, "tool://x", "", "not-an-address")
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigError, types.ErrorCode(err))
}
