package facilitator

import (
	"context"
	"sync"

	"github.com/mintgate/x402/logger"
	"github.com/mintgate/x402/types"
)

// Dispatcher routes verify and settle calls to a per-network facilitator
// client. Clients are created lazily on first use and cached for the
// process lifetime; endpoints are fixed at construction, so there is no
// hot-reload without a restart.
type Dispatcher struct {
	cfg Config
	log logger.Logger

	mu      sync.Mutex
	clients map[types.Network]*Client
}

// NewDispatcher creates a dispatcher over the given endpoint configuration.
func NewDispatcher(cfg Config, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Dispatcher{
		cfg:     cfg,
		log:     log,
		clients: make(map[types.Network]*Client),
	}
}

// ClientFor returns the facilitator client for a network, creating and
// caching it on first use. Create-if-absent under one mutex: concurrent
// first access yields a single client per network.
func (d *Dispatcher) ClientFor(network types.Network) *Client {
	d.mu.Lock()
	defer d.mu.Unlock()

	if client, ok := d.clients[network]; ok {
		return client
	}

	url, fellBack := d.cfg.URLFor(network)
	if fellBack {
		d.log.Warn("no facilitator configured for network, using fallback", map[string]any{
			"network": network.String(),
			"url":     url,
		})
	}

	client := NewClient(url, d.cfg.Timeout)
	d.clients[network] = client
	return client
}

// Verify dispatches a verification call through the client for the
// requirement's network.
func (d *Dispatcher) Verify(ctx context.Context, payload *types.PaymentPayload, requirements *types.PaymentRequirements) (*types.VerifyResponse, error) {
	return d.ClientFor(types.Network(requirements.Network)).Verify(ctx, payload, requirements)
}

// Settle dispatches a settlement call through the client for the
// requirement's network.
func (d *Dispatcher) Settle(ctx context.Context, payload *types.PaymentPayload, requirements *types.PaymentRequirements) (*types.SettleResponse, error) {
	return d.ClientFor(types.Network(requirements.Network)).Settle(ctx, payload, requirements)
}
