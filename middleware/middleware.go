// Package middleware exposes the payment gate as a Gin middleware: it
// challenges unpaid requests with 402, runs the handler once payment is
// verified, and settles afterwards, attaching the receipt as a response
// header.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	x402 "github.com/mintgate/x402"
	"github.com/mintgate/x402/encoding"
	"github.com/mintgate/x402/pricing"
	"github.com/mintgate/x402/types"
)

// ContextKey is the gin context key the verified payment is stored under.
const ContextKey = "x402/payment"

// Options configures the payment middleware.
type Options struct {
	Description     string
	Resource        string
	ResourceRootURL string
}

// Option mutates Options.
type Option func(*Options)

// WithDescription sets the human-readable description advertised in the
// payment requirements.
func WithDescription(description string) Option {
	return func(o *Options) {
		o.Description = description
	}
}

// WithResource pins the resource URI instead of deriving it from the
// request path.
func WithResource(resource string) Option {
	return func(o *Options) {
		o.Resource = resource
	}
}

// WithResourceRootURL sets the prefix prepended to the request path when
// deriving the resource URI.
func WithResourceRootURL(rootURL string) Option {
	return func(o *Options) {
		o.ResourceRootURL = rootURL
	}
}

// Payment gates a route behind an x402 payment. price is a money string
// ("$0.10") or a pricing.AssetAmount; payTo receives the funds.
func Payment(gate *x402.Gate, price any, network types.Network, payTo string, opts ...Option) gin.HandlerFunc {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return func(c *gin.Context) {
		resource := options.Resource
		if resource == "" {
			resource = options.ResourceRootURL + c.Request.URL.Path
		}

		requirement, err := pricing.CreateExactRequirements(price, network, resource, options.Description, payTo)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"x402Version": types.X402Version,
				"error":       err.Error(),
			})
			return
		}
		accepts := []types.PaymentRequirements{*requirement}

		payment, err := gate.Verify(c.Request.Context(), ginContext{c}, accepts)
		if err != nil {
			// The gate already wrote the 402 challenge.
			c.Abort()
			return
		}
		c.Set(ContextKey, payment)

		// Buffer the handler's response so the settlement receipt header
		// can still be attached after it runs.
		buffered := &bufferedWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = buffered
		c.Next()
		c.Writer = buffered.ResponseWriter

		if c.IsAborted() {
			buffered.flush(c.Writer)
			return
		}

		// Settlement is finalization, not a gate: the response below is
		// delivered whether or not settle succeeds.
		if receipt, err := gate.Settle(c.Request.Context(), payment); err == nil && receipt.Success {
			if header, err := encoding.EncodeSettleResponse(receipt); err == nil {
				c.Header(x402.SettleResponseHeader, header)
			}
		}

		buffered.flush(c.Writer)
	}
}

// Get returns the verified payment stored by the middleware, if any.
func Get(c *gin.Context) (*x402.VerifiedPayment, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	payment, ok := v.(*x402.VerifiedPayment)
	return payment, ok
}

// ginContext adapts gin.Context to the gate's RequestContext.
type ginContext struct {
	c *gin.Context
}

func (g ginContext) Header(name string) string {
	return g.c.GetHeader(name)
}

func (g ginContext) WriteJSON(status int, body any) error {
	g.c.AbortWithStatusJSON(status, body)
	return nil
}

// bufferedWriter captures the handler's response body and status so it can
// be replayed after settlement.
type bufferedWriter struct {
	gin.ResponseWriter
	body    strings.Builder
	status  int
	written bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.WriteString(s)
}

func (w *bufferedWriter) flush(out gin.ResponseWriter) {
	out.WriteHeader(w.status)
	out.Write([]byte(w.body.String()))
}
