// Package x402 implements the server side of the x402 payment protocol:
// it challenges unpaid requests with HTTP 402, verifies submitted payment
// payloads through per-network facilitators, and settles them after the
// paid resource has been served.
package x402

import (
	"context"
	"net/http"
	"time"

	"github.com/mintgate/x402/encoding"
	"github.com/mintgate/x402/facilitator"
	"github.com/mintgate/x402/logger"
	"github.com/mintgate/x402/metrics"
	"github.com/mintgate/x402/types"
)

const (
	// PaymentHeader carries the base64-encoded payment payload.
	PaymentHeader = "X-PAYMENT"

	// SettleResponseHeader carries the base64-encoded settlement receipt.
	SettleResponseHeader = "X-PAYMENT-RESPONSE"
)

// RequestContext is the capability the gate needs from the host HTTP
// framework: read a request header and write a JSON response.
type RequestContext interface {
	Header(name string) string
	WriteJSON(status int, body any) error
}

// VerifiedPayment is a payment that passed facilitator verification,
// bound to the requirement it satisfied. It is the handle later passed
// to Settle.
type VerifiedPayment struct {
	Payload     *types.PaymentPayload
	Requirement *types.PaymentRequirements
	Payer       string
}

// Gate orchestrates decode, verify and settle for inbound requests. All
// payment errors are translated into the 402 JSON shape here and nowhere
// else; components below the gate never write to the response.
type Gate struct {
	dispatcher *facilitator.Dispatcher
	log        logger.Logger
	metrics    metrics.Recorder
}

// New creates a payment gate over the given facilitator endpoints.
func New(cfg facilitator.Config, opts ...Option) *Gate {
	g := &Gate{
		log:     logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.dispatcher = facilitator.NewDispatcher(cfg, g.log)
	return g
}

// Dispatcher exposes the underlying facilitator dispatcher, for callers
// that need direct access to a network's client.
func (g *Gate) Dispatcher() *facilitator.Dispatcher {
	return g.dispatcher
}

// Verify runs the payment state machine for one inbound request: read the
// payment header, decode it, and verify it against the acceptable
// requirements. On any rejection it writes the 402 challenge to rc and
// returns the rejection error; the caller must not serve the resource. On
// success it returns the verified payment and the caller proceeds.
func (g *Gate) Verify(ctx context.Context, rc RequestContext, accepts []types.PaymentRequirements) (*VerifiedPayment, error) {
	if len(accepts) == 0 {
		return nil, types.Errorf(types.ErrConfigError, "no payment requirements configured")
	}

	raw := rc.Header(PaymentHeader)
	if raw == "" {
		err := types.Errorf(types.ErrMissingPayment, "%s header is required", PaymentHeader)
		g.reject(rc, accepts, err.Message, "")
		g.count("missing_payment", accepts[0].Network)
		return nil, err
	}

	payload, err := encoding.DecodePayment(raw)
	if err != nil {
		g.reject(rc, accepts, reason(err), "")
		g.count("malformed_payment", accepts[0].Network)
		return nil, err
	}

	requirement := selectRequirement(accepts, payload)
	if requirement == nil {
		err := types.Errorf(types.ErrInvalidPayment,
			"payment for scheme %q on network %q matches no accepted requirement", payload.Scheme, payload.Network)
		g.reject(rc, accepts, err.Message, "")
		g.count("unmatched_payment", payload.Network)
		return nil, err
	}

	start := time.Now()
	resp, err := g.dispatcher.Verify(ctx, payload, requirement)
	g.metrics.ObserveLatency("verify", time.Since(start), map[string]string{"network": requirement.Network})
	if err != nil {
		g.log.Error("facilitator verify failed", map[string]any{
			"network": requirement.Network,
			"error":   err.Error(),
		})
		g.reject(rc, accepts, "payment verification unavailable", "")
		g.count("facilitator_error", requirement.Network)
		return nil, err
	}

	if !resp.IsValid {
		err := types.Errorf(types.ErrInvalidPayment, "invalid payment: %s", resp.InvalidReason)
		g.rejectWithPayer(rc, accepts, resp.InvalidReason, resp.Payer)
		g.count("invalid_payment", requirement.Network)
		return nil, err
	}

	g.count("verified", requirement.Network)
	g.log.Debug("payment verified", map[string]any{
		"network": requirement.Network,
		"payer":   resp.Payer,
	})

	return &VerifiedPayment{
		Payload:     payload,
		Requirement: requirement,
		Payer:       resp.Payer,
	}, nil
}

// Settle finalizes a verified payment after the resource has been served.
// Settlement failures are reported to the caller but never claw back a
// response that was already committed; verify blocks execution, settle
// does not.
func (g *Gate) Settle(ctx context.Context, payment *VerifiedPayment) (*types.SettleResponse, error) {
	start := time.Now()
	receipt, err := g.dispatcher.Settle(ctx, payment.Payload, payment.Requirement)
	g.metrics.ObserveLatency("settle", time.Since(start), map[string]string{"network": payment.Requirement.Network})
	if err != nil {
		g.count("settle_error", payment.Requirement.Network)
		g.log.Error("facilitator settle failed", map[string]any{
			"network": payment.Requirement.Network,
			"payer":   payment.Payer,
			"error":   err.Error(),
		})
		return nil, err
	}

	if !receipt.Success {
		g.count("settle_rejected", payment.Requirement.Network)
		g.log.Warn("settlement rejected", map[string]any{
			"network": payment.Requirement.Network,
			"payer":   payment.Payer,
			"reason":  receipt.ErrorReason,
		})
		return receipt, nil
	}

	g.count("settled", payment.Requirement.Network)
	g.log.Info("payment settled", map[string]any{
		"network":     payment.Requirement.Network,
		"payer":       payment.Payer,
		"transaction": receipt.Transaction,
	})
	return receipt, nil
}

// selectRequirement picks the first requirement matching the payload's
// scheme and network.
func selectRequirement(accepts []types.PaymentRequirements, payload *types.PaymentPayload) *types.PaymentRequirements {
	for i := range accepts {
		if accepts[i].Scheme == payload.Scheme && accepts[i].Network == payload.Network {
			return &accepts[i]
		}
	}
	return nil
}

func (g *Gate) reject(rc RequestContext, accepts []types.PaymentRequirements, errMsg, payer string) {
	g.rejectWithPayer(rc, accepts, errMsg, payer)
}

func (g *Gate) rejectWithPayer(rc RequestContext, accepts []types.PaymentRequirements, errMsg, payer string) {
	body := types.PaymentRequiredResponse{
		X402Version: types.X402Version,
		Error:       errMsg,
		Accepts:     accepts,
		Payer:       payer,
	}
	if err := rc.WriteJSON(http.StatusPaymentRequired, body); err != nil {
		g.log.Error("failed to write 402 response", map[string]any{"error": err.Error()})
	}
}

func (g *Gate) count(event, network string) {
	g.metrics.IncCounter(event, map[string]string{"network": network})
}

// reason reduces an error to the short string surfaced to clients. Raw
// error chains stay in the logs.
func reason(err error) string {
	if e, ok := err.(*types.X402Error); ok {
		return e.Message
	}
	return "payment could not be processed"
}
