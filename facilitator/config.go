package facilitator

import (
	"os"
	"strings"
	"time"

	"github.com/mintgate/x402/types"
)

// DefaultURL is the facilitator used for any network without a specific
// override.
const DefaultURL = "https://x402.org/facilitator"

// Config enumerates facilitator endpoints: one URL per network that needs
// an override, plus a single fallback for everything else. It is built
// once at the composition root; business logic never reads the process
// environment.
type Config struct {
	// DefaultURL is the fallback facilitator endpoint.
	DefaultURL string

	// NetworkURLs maps networks to endpoint overrides.
	NetworkURLs map[types.Network]string

	// Timeout bounds each outbound facilitator call. Zero means the
	// http.Client default (no timeout).
	Timeout time.Duration
}

// DefaultConfig returns a Config pointing every network at the public
// default facilitator.
func DefaultConfig() Config {
	return Config{
		DefaultURL: DefaultURL,
		Timeout:    30 * time.Second,
	}
}

// ConfigFromEnv loads facilitator endpoints from the environment:
// X402_FACILITATOR_URL for the fallback and X402_FACILITATOR_URL_<NETWORK>
// (uppercased, dashes as underscores, e.g. X402_FACILITATOR_URL_SEI_TESTNET)
// per network.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if url := os.Getenv("X402_FACILITATOR_URL"); url != "" {
		cfg.DefaultURL = url
	}

	for _, network := range types.SupportedNetworks() {
		key := "X402_FACILITATOR_URL_" + strings.ToUpper(strings.ReplaceAll(network.String(), "-", "_"))
		if url := os.Getenv(key); url != "" {
			if cfg.NetworkURLs == nil {
				cfg.NetworkURLs = make(map[types.Network]string)
			}
			cfg.NetworkURLs[network] = url
		}
	}

	return cfg
}

// URLFor resolves the endpoint for a network. The second return reports
// whether the fallback was used, so callers can log it rather than fall
// back silently.
func (c Config) URLFor(network types.Network) (string, bool) {
	if url, ok := c.NetworkURLs[network]; ok && url != "" {
		return url, false
	}
	if c.DefaultURL != "" {
		return c.DefaultURL, true
	}
	return DefaultURL, true
}
