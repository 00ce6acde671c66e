package x402

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/x402/facilitator"
	"github.com/mintgate/x402/types"
)

const (
	testPayer = "0xE4d365a5a8fC0DCEE9E3C5985D7FcBab8B4A0fE1"
	testPayee = "0x209693Bc6afc0C5328bA36FaF03C514EF312287C"
)

func testAccepts() []types.PaymentRequirements {
	return []types.PaymentRequirements{{
		Scheme:            types.SchemeExact,
		Network:           "base-sepolia",
		MaxAmountRequired: "100000",
		Resource:          "tool://weather",
		PayTo:             testPayee,
		MaxTimeoutSeconds: 60,
		Asset:             "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
	}}
}

func testPaymentHeader(t *testing.T) string {
	t.Helper()
	raw := fmt.Sprintf(`{
		"x402Version": 1,
		"scheme": "exact",
		"network": "base-sepolia",
		"payload": {
			"signature": "0x2e8818a233e2e802c953aed477858957ff85a4b91e047181e17ef4b096108e66409119a4c3fac7867b2c2b799b32a0aac108c524cffb3bf0ea6e0906f63d80271b",
			"authorization": {
				"from": %q,
				"to": %q,
				"value": "100000",
				"validAfter": "0",
				"validBefore": "9999999999",
				"nonce": "0xf408d6d1f1d1bca7c6396ed30f00a46ca4e5b073fff983e42b348776a5aa651c"
			}
		}
	}`, testPayer, testPayee)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// fakeFacilitator serves verify and settle with canned responses.
func fakeFacilitator(t *testing.T, verify types.VerifyResponse, settle types.SettleResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/verify":
			json.NewEncoder(w).Encode(verify)
		case "/settle":
			json.NewEncoder(w).Encode(settle)
		default:
			http.NotFound(w, r)
		}
	}))
}

func gateFor(url string) *Gate {
	return New(facilitator.Config{DefaultURL: url})
}

func doVerify(t *testing.T, g *Gate, header string) (*VerifiedPayment, *httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/weather", nil)
	if header != "" {
		req.Header.Set(PaymentHeader, header)
	}
	rec := httptest.NewRecorder()
	payment, err := g.Verify(context.Background(), NewHTTPContext(rec, req), testAccepts())
	return payment, rec, err
}

func decode402(t *testing.T, rec *httptest.ResponseRecorder) types.PaymentRequiredResponse {
	t.Helper()
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body types.PaymentRequiredResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestVerifyMissingHeader(t *testing.T) {
	g := gateFor("http://127.0.0.1:1")

	payment, rec, err := doVerify(t, g, "")
	require.Error(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, types.ErrMissingPayment, types.ErrorCode(err))

	body := decode402(t, rec)
	assert.Equal(t, 1, body.X402Version)
	assert.NotEmpty(t, body.Error)
	require.Len(t, body.Accepts, 1)
	assert.Equal(t, "100000", body.Accepts[0].MaxAmountRequired)
	assert.Empty(t, body.Payer)
}

func TestVerifyMalformedHeader(t *testing.T) {
	g := gateFor("http://127.0.0.1:1")

	payment, rec, err := doVerify(t, g, "!!not base64!!")
	require.Error(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, types.ErrMalformedPayment, types.ErrorCode(err))
	decode402(t, rec)
}

func TestVerifyUnmatchedRequirement(t *testing.T) {
	g := gateFor("http://127.0.0.1:1")

	raw := fmt.Sprintf(`{
		"x402Version": 1,
		"scheme": "exact",
		"network": "polygon",
		"payload": {
			"signature": "0xdead",
			"authorization": {
				"from": %q, "to": %q, "value": "100000",
				"validAfter": "0", "validBefore": "9999999999",
				"nonce": "0xf408d6d1f1d1bca7c6396ed30f00a46ca4e5b073fff983e42b348776a5aa651c"
			}
		}
	}`, testPayer, testPayee)

	payment, rec, err := doVerify(t, g, base64.StdEncoding.EncodeToString([]byte(raw)))
	require.Error(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, types.ErrInvalidPayment, types.ErrorCode(err))
	decode402(t, rec)
}

func TestVerifyHappyPath(t *testing.T) {
	srv := fakeFacilitator(t,
		types.VerifyResponse{IsValid: true, Payer: testPayer},
		types.SettleResponse{})
	defer srv.Close()

	g := gateFor(srv.URL)

	payment, rec, err := doVerify(t, g, testPaymentHeader(t))
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, testPayer, payment.Payer)
	assert.Equal(t, "base-sepolia", payment.Requirement.Network)
	assert.Equal(t, "100000", payment.Payload.Payload.Authorization.Value.String())

	// Nothing written on success; the handler owns the response.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestVerifyRejectedByFacilitator(t *testing.T) {
	srv := fakeFacilitator(t,
		types.VerifyResponse{IsValid: false, InvalidReason: "insufficient_funds", Payer: testPayer},
		types.SettleResponse{})
	defer srv.Close()

	g := gateFor(srv.URL)

	payment, rec, err := doVerify(t, g, testPaymentHeader(t))
	require.Error(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, types.ErrInvalidPayment, types.ErrorCode(err))

	body := decode402(t, rec)
	assert.Equal(t, "insufficient_funds", body.Error)
	assert.Equal(t, testPayer, body.Payer)
}

func TestVerifyFacilitatorDown(t *testing.T) {
	g := gateFor("http://127.0.0.1:1")

	payment, rec, err := doVerify(t, g, testPaymentHeader(t))
	require.Error(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, types.ErrFacilitatorError, types.ErrorCode(err))

	body := decode402(t, rec)
	assert.Equal(t, "payment verification unavailable", body.Error)
}

func TestVerifyNoRequirementsConfigured(t *testing.T) {
	g := gateFor("http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodGet, "/weather", nil)
	rec := httptest.NewRecorder()
	payment, err := g.Verify(context.Background(), NewHTTPContext(rec, req), nil)
	require.Error(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, types.ErrConfigError, types.ErrorCode(err))

	// Misconfiguration is the server's fault, not the client's; no 402.
	assert.Zero(t, rec.Body.Len())
}

func TestSettleSuccess(t *testing.T) {
	srv := fakeFacilitator(t,
		types.VerifyResponse{IsValid: true, Payer: testPayer},
		types.SettleResponse{Success: true, Transaction: "0xabc123", Network: "base-sepolia", Payer: testPayer})
	defer srv.Close()

	g := gateFor(srv.URL)

	payment, _, err := doVerify(t, g, testPaymentHeader(t))
	require.NoError(t, err)

	receipt, err := g.Settle(context.Background(), payment)
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Equal(t, "0xabc123", receipt.Transaction)
}

// A settlement the facilitator declines is reported through the receipt,
// not as a transport error.
func TestSettleRejected(t *testing.T) {
	srv := fakeFacilitator(t,
		types.VerifyResponse{IsValid: true, Payer: testPayer},
		types.SettleResponse{Success: false, ErrorReason: "authorization_expired", Network: "base-sepolia"})
	defer srv.Close()

	g := gateFor(srv.URL)

	payment, _, err := doVerify(t, g, testPaymentHeader(t))
	require.NoError(t, err)

	receipt, err := g.Settle(context.Background(), payment)
	require.NoError(t, err)
	assert.False(t, receipt.Success)
	assert.Equal(t, "authorization_expired", receipt.ErrorReason)
}

func TestSettleFacilitatorDown(t *testing.T) {
	srv := fakeFacilitator(t,
		types.VerifyResponse{IsValid: true, Payer: testPayer},
		types.SettleResponse{})

	g := gateFor(srv.URL)
	payment, _, err := doVerify(t, g, testPaymentHeader(t))
	require.NoError(t, err)

	srv.Close()

	_, err = g.Settle(context.Background(), payment)
	require.Error(t, err)
	assert.Equal(t, types.ErrFacilitatorError, types.ErrorCode(err))
}
