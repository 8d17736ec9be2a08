package council

import (
	"github.com/dshills/council-go/council/emit"
)

// Option configures a Council.
type Option func(*Council)

// WithObserver sets the progress observer notified after each stage
// settles. Nil disables progress notification.
func WithObserver(o Observer) Option {
	return func(c *Council) { c.observer = o }
}

// WithEmitter sets the observability emitter. Defaults to a NullEmitter.
func WithEmitter(e emit.Emitter) Option {
	return func(c *Council) {
		if e != nil {
			c.emitter = e
		}
	}
}

// WithMetrics sets the Prometheus metrics collector. Nil disables
// metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Council) { c.metrics = m }
}

// WithSeed fixes the anonymization permutation seed, making label
// assignment deterministic. Without it every run draws a fresh seed.
func WithSeed(seed int64) Option {
	return func(c *Council) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithRunID fixes the run identifier carried by emitted events. Without
// it every run generates one.
func WithRunID(id string) Option {
	return func(c *Council) { c.runID = id }
}
