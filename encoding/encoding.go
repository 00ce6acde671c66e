// Package encoding decodes and encodes x402 payment data carried in HTTP
// headers: base64-wrapped JSON payment payloads and settlement receipts.
package encoding

import (
	"encoding/base64"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"

	"github.com/mintgate/x402/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// DecodePayment decodes an opaque X-PAYMENT header value into a validated
// PaymentPayload. Acceptance is all-or-nothing: a payload that fails any
// structural check is rejected whole.
func DecodePayment(raw string) (*types.PaymentPayload, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, types.Errorf(types.ErrMalformedPayment, "payment header is not valid base64")
	}

	var payload types.PaymentPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, types.Errorf(types.ErrMalformedPayment, "payment header is not valid JSON")
	}

	if err := validate.Struct(&payload); err != nil {
		return nil, types.Errorf(types.ErrSchemaViolation, "payment payload failed validation: %v", err)
	}
	if err := validateExactEvm(&payload.Payload); err != nil {
		return nil, err
	}

	return &payload, nil
}

// validateExactEvm checks the chain-level field formats the struct tags
// cannot express.
func validateExactEvm(p *types.ExactEvmPayload) error {
	auth := &p.Authorization

	if !common.IsHexAddress(auth.From) {
		return types.Errorf(types.ErrSchemaViolation, "authorization.from is not a valid address")
	}
	if !common.IsHexAddress(auth.To) {
		return types.Errorf(types.ErrSchemaViolation, "authorization.to is not a valid address")
	}

	nonce, err := hexutil.Decode(auth.Nonce)
	if err != nil || len(nonce) != common.HashLength {
		return types.Errorf(types.ErrSchemaViolation, "authorization.nonce is not a 32-byte hex value")
	}

	if _, err := hexutil.Decode(p.Signature); err != nil {
		return types.Errorf(types.ErrSchemaViolation, "signature is not valid hex")
	}

	return nil
}

// EncodePayment encodes a PaymentPayload for transport in an X-PAYMENT
// header.
func EncodePayment(payload *types.PaymentPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", types.Errorf(types.ErrMalformedPayment, "failed to marshal payment: %v", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// EncodeSettleResponse encodes a settlement receipt for transport in an
// X-PAYMENT-RESPONSE header.
func EncodeSettleResponse(receipt *types.SettleResponse) (string, error) {
	data, err := json.Marshal(receipt)
	if err != nil {
		return "", types.Errorf(types.ErrMalformedPayment, "failed to marshal settle response: %v", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSettleResponse decodes an X-PAYMENT-RESPONSE header value.
func DecodeSettleResponse(raw string) (*types.SettleResponse, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, types.Errorf(types.ErrMalformedPayment, "settle response header is not valid base64")
	}

	var receipt types.SettleResponse
	if err := json.Unmarshal(decoded, &receipt); err != nil {
		return nil, types.Errorf(types.ErrMalformedPayment, "settle response header is not valid JSON")
	}
	return &receipt, nil
}
