// Package metrics defines the instrumentation contract for the payment
// gate: counters for payment outcomes and latency histograms for
// facilitator calls.
package metrics

import "time"

// Recorder receives gate instrumentation events.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
