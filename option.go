package x402

import (
	"github.com/mintgate/x402/logger"
	"github.com/mintgate/x402/metrics"
)

// Option configures a Gate.
type Option func(*Gate)

// WithLogger injects a structured logger. Defaults to a no-op logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

// WithMetrics injects a metrics recorder. Defaults to a no-op recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(g *Gate) {
		g.metrics = r
	}
}
