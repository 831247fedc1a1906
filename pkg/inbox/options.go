package inbox

import (
	"time"

	"github.com/c360/signalbus/metric"
)

// Option configures inbox behavior using the functional options pattern.
type Option func(*inboxOptions)

// inboxOptions holds internal configuration for inbox instances.
// Statistics are always collected; metrics are optional.
type inboxOptions struct {
	overflowPolicy OverflowPolicy
	sendTimeout    time.Duration
	dropCallback   DropCallback

	// metricsReg is optional - if provided, inbox stats are also exposed
	// as Prometheus metrics under the given name
	metricsReg  *metric.MetricsRegistry
	metricsName string
}

// WithOverflowPolicy sets the overflow behavior. Defaults to DropNewest.
func WithOverflowPolicy(policy OverflowPolicy) Option {
	return func(opts *inboxOptions) {
		opts.overflowPolicy = policy
	}
}

// WithSendTimeout sets the bounded wait used by BlockWithTimeout. Ignored
// for the other policies. Defaults to 10ms.
func WithSendTimeout(d time.Duration) Option {
	return func(opts *inboxOptions) {
		if d > 0 {
			opts.sendTimeout = d
		}
	}
}

// WithDropCallback sets a callback invoked with each dropped message.
func WithDropCallback(cb DropCallback) Option {
	return func(opts *inboxOptions) {
		opts.dropCallback = cb
	}
}

// WithMetrics enables Prometheus metrics export for inbox statistics.
// If registry is nil or name is empty, this option is ignored.
func WithMetrics(registry *metric.MetricsRegistry, name string) Option {
	return func(opts *inboxOptions) {
		if registry != nil && name != "" {
			opts.metricsReg = registry
			opts.metricsName = name
		}
	}
}

func applyOptions(options ...Option) *inboxOptions {
	opts := &inboxOptions{
		overflowPolicy: DropNewest,
		sendTimeout:    10 * time.Millisecond,
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
