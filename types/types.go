// Package types defines the wire-level data model of the x402 payment
// protocol as consumed and produced by the payment gate.
package types

import (
	"encoding/json"
	"fmt"
)

// X402Version is the protocol version spoken by this module.
const X402Version = 1

// SchemeExact is the only payment scheme this module issues: the payer
// authorizes an exact fixed amount.
const SchemeExact = "exact"

// PaymentRequirements describes one way a client may pay for a resource.
// Field names are part of the x402 wire format and must not change.
type PaymentRequirements struct {
	// Scheme of the payment protocol to use (always "exact" here).
	Scheme string `json:"scheme" validate:"required"`

	// Network of the blockchain to send payment on (e.g. "base-sepolia").
	Network string `json:"network" validate:"required"`

	// Maximum amount required to pay for the resource in atomic units of
	// the asset. Represented as a string because Go has no uint256.
	MaxAmountRequired string `json:"maxAmountRequired" validate:"required"`

	// Resource is the opaque URI of the priced tool or endpoint.
	Resource string `json:"resource" validate:"required"`

	// Description of the resource being purchased.
	Description string `json:"description"`

	// MIME type of the resource response.
	MimeType string `json:"mimeType"`

	// PayTo is the address payment must be sent to.
	PayTo string `json:"payTo" validate:"required"`

	// MaxTimeoutSeconds is the window the payer's signed authorization
	// remains valid. Enforced by the facilitator.
	MaxTimeoutSeconds int `json:"maxTimeoutSeconds" validate:"gt=0"`

	// Asset is the token contract address.
	Asset string `json:"asset" validate:"required"`

	// OutputSchema of the resource response, if any.
	OutputSchema map[string]any `json:"outputSchema,omitempty"`

	// Extra carries the EIP-712 domain name/version of the asset. These
	// are part of the signed payment domain; altering them breaks
	// client-side signature verification.
	Extra map[string]any `json:"extra,omitempty"`
}

// Validate checks that the PaymentRequirements contain all required fields.
func (pr *PaymentRequirements) Validate() error {
	if pr.Scheme == "" {
		return fmt.Errorf("paymentRequirements.scheme is required")
	}
	if pr.Network == "" {
		return fmt.Errorf("paymentRequirements.network is required")
	}
	if pr.MaxAmountRequired == "" {
		return fmt.Errorf("paymentRequirements.maxAmountRequired is required")
	}
	if pr.PayTo == "" {
		return fmt.Errorf("paymentRequirements.payTo is required")
	}
	if pr.Asset == "" {
		return fmt.Errorf("paymentRequirements.asset is required")
	}
	if pr.MaxTimeoutSeconds <= 0 {
		return fmt.Errorf("paymentRequirements.maxTimeoutSeconds must be greater than 0")
	}
	return nil
}

// NumericString is a uint256-scale numeric field carried as a string on the
// wire. It accepts both JSON strings and JSON numbers when decoding so that
// clients emitting bare numbers do not lose precision through float64.
type NumericString string

// UnmarshalJSON accepts `"123"` and `123` alike, preserving the exact digits.
func (n *NumericString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericString(num.String())
	return nil
}

func (n NumericString) String() string {
	return string(n)
}

// ExactEvmAuthorization is the EIP-3009 TransferWithAuthorization message
// the payer signed.
type ExactEvmAuthorization struct {
	From        string        `json:"from" validate:"required"`
	To          string        `json:"to" validate:"required"`
	Value       NumericString `json:"value" validate:"required"`
	ValidAfter  NumericString `json:"validAfter" validate:"required"`
	ValidBefore NumericString `json:"validBefore" validate:"required"`
	Nonce       string        `json:"nonce" validate:"required"`
}

// ExactEvmPayload carries the signature and authorization for the exact
// scheme on EVM networks.
type ExactEvmPayload struct {
	Signature     string                `json:"signature" validate:"required"`
	Authorization ExactEvmAuthorization `json:"authorization" validate:"required"`
}

// PaymentPayload is the decoded client submission from the X-PAYMENT header.
// Constructed transiently per request; never persisted by this module.
type PaymentPayload struct {
	X402Version int             `json:"x402Version" validate:"required,gt=0"`
	Scheme      string          `json:"scheme" validate:"required"`
	Network     string          `json:"network" validate:"required"`
	Payload     ExactEvmPayload `json:"payload" validate:"required"`
}

// PaymentRequiredResponse is the JSON body of an HTTP 402 challenge. The
// full accepts list is always re-advertised so a compliant client can retry
// with corrected parameters without another discovery round trip.
type PaymentRequiredResponse struct {
	X402Version int                   `json:"x402Version"`
	Error       string                `json:"error"`
	Accepts     []PaymentRequirements `json:"accepts"`
	Payer       string                `json:"payer,omitempty"`
}

// VerifyResponse is the facilitator's verification result.
type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

// SettleResponse is the facilitator's settlement receipt.
type SettleResponse struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"errorReason,omitempty"`
	Transaction string `json:"transaction,omitempty"`
	Network     string `json:"network,omitempty"`
	Payer       string `json:"payer,omitempty"`
}

// AssetDescriptor identifies a token on one network together with the
// EIP-712 domain metadata clients sign against. Immutable once resolved.
type AssetDescriptor struct {
	Address       string
	Decimals      int
	EIP712Name    string
	EIP712Version string
}

// X402Error is the error type raised by every component below the gate.
type X402Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *X402Error) Error() string {
	return e.Message
}

// Errorf builds an X402Error with a formatted message.
func Errorf(code, format string, args ...any) *X402Error {
	return &X402Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Common error codes.
const (
	ErrInvalidFormat      = "INVALID_FORMAT"
	ErrInvalidDecimals    = "INVALID_DECIMALS"
	ErrPrecisionLoss      = "PRECISION_LOSS"
	ErrInvalidPrice       = "INVALID_PRICE"
	ErrUnsupportedNetwork = "UNSUPPORTED_NETWORK"
	ErrMissingPayment     = "MISSING_PAYMENT"
	ErrMalformedPayment   = "MALFORMED_PAYMENT"
	ErrSchemaViolation    = "SCHEMA_VIOLATION"
	ErrFacilitatorError   = "FACILITATOR_ERROR"
	ErrInvalidPayment     = "INVALID_PAYMENT"
	ErrConfigError        = "CONFIG_ERROR"
)

// ErrorCode extracts the x402 error code from err, or "" if err is not an
// X402Error.
func ErrorCode(err error) string {
	if e, ok := err.(*X402Error); ok {
		return e.Code
	}
	return ""
}
