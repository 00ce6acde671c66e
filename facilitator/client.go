// Package facilitator dispatches verify and settle calls to per-network
// x402 facilitator services over HTTP.
package facilitator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mintgate/x402/types"
)

const (
	headerContentType   = "Content-Type"
	mimeApplicationJSON = "application/json"
)

// Client is bound to exactly one facilitator endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a facilitator client for the given endpoint.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint this client is bound to.
func (c *Client) URL() string {
	return c.url
}

type facilitatorRequest struct {
	X402Version         int                        `json:"x402Version"`
	PaymentPayload      *types.PaymentPayload      `json:"paymentPayload"`
	PaymentRequirements *types.PaymentRequirements `json:"paymentRequirements"`
}

func (c *Client) post(ctx context.Context, path string, payload *types.PaymentPayload, requirements *types.PaymentRequirements, out any) error {
	body, err := json.Marshal(facilitatorRequest{
		X402Version:         types.X402Version,
		PaymentPayload:      payload,
		PaymentRequirements: requirements,
	})
	if err != nil {
		return types.Errorf(types.ErrFacilitatorError, "failed to marshal %s request: %v", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", c.url, path), bytes.NewReader(body))
	if err != nil {
		return types.Errorf(types.ErrFacilitatorError, "failed to create %s request: %v", path, err)
	}
	req.Header.Set(headerContentType, mimeApplicationJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Errorf(types.ErrFacilitatorError, "facilitator %s call failed: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Errorf(types.ErrFacilitatorError, "facilitator %s returned %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.Errorf(types.ErrFacilitatorError, "failed to decode %s response: %v", path, err)
	}
	return nil
}

// Verify asks the facilitator to verify a payment payload against the
// requirement it claims to satisfy.
func (c *Client) Verify(ctx context.Context, payload *types.PaymentPayload, requirements *types.PaymentRequirements) (*types.VerifyResponse, error) {
	var out types.VerifyResponse
	if err := c.post(ctx, "verify", payload, requirements, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Settle asks the facilitator to execute the verified payment on-chain.
func (c *Client) Settle(ctx context.Context, payload *types.PaymentPayload, requirements *types.PaymentRequirements) (*types.SettleResponse, error) {
	var out types.SettleResponse
	if err := c.post(ctx, "settle", payload, requirements, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SupportedKind is one scheme/network pair a facilitator can process.
type SupportedKind struct {
	X402Version int    `json:"x402Version"`
	Scheme      string `json:"scheme"`
	Network     string `json:"network"`
}

// SupportedResponse lists the payment kinds a facilitator supports.
type SupportedResponse struct {
	Kinds []SupportedKind `json:"kinds"`
}

// Supported retrieves the payment kinds the facilitator can process.
func (c *Client) Supported(ctx context.Context) (*SupportedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/supported", c.url), nil)
	if err != nil {
		return nil, types.Errorf(types.ErrFacilitatorError, "failed to create supported request: %v", err)
	}
	req.Header.Set(headerContentType, mimeApplicationJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.Errorf(types.ErrFacilitatorError, "facilitator supported call failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.Errorf(types.ErrFacilitatorError, "facilitator supported returned %s", resp.Status)
	}

	var out SupportedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.Errorf(types.ErrFacilitatorError, "failed to decode supported response: %v", err)
	}
	return &out, nil
}
