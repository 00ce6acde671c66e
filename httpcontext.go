package x402

import (
	"encoding/json"
	"net/http"
)

// httpContext adapts net/http to the RequestContext interface.
type httpContext struct {
	w http.ResponseWriter
	r *http.Request
}

// NewHTTPContext wraps a net/http request/response pair as a
// RequestContext, for hosts not using a web framework.
func NewHTTPContext(w http.ResponseWriter, r *http.Request) RequestContext {
	return &httpContext{w: w, r: r}
}

func (c *httpContext) Header(name string) string {
	return c.r.Header.Get(name)
}

func (c *httpContext) WriteJSON(status int, body any) error {
	c.w.Header().Set("Content-Type", "application/json")
	c.w.WriteHeader(status)
	return json.NewEncoder(c.w).Encode(body)
}
