package alloc

import (
	"log/slog"
)

type options struct {
	logger  *slog.Logger
	metrics MetricsCollector
	budget  *Budget
	offHeap bool
}

// Option configures an allocator.
type Option func(*options)

// WithLogger sets the logger for the allocator.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the collector notified about every operation.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithMemoryLimit caps the bytes the allocator may reserve.
// If set to 0, memory is unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.budget = NewBudget(bytes)
	}
}

// WithBudget charges reservations to a Budget that may be shared with other
// allocators.
func WithBudget(b *Budget) Option {
	return func(o *options) {
		o.budget = b
	}
}

// WithOffHeap backs an Arena region with an anonymous memory mapping instead
// of a Go heap slice. Other allocators ignore it.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
