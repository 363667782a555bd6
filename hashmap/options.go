package hashmap

import (
	"log/slog"
	"time"

	"github.com/hupe1980/memkit/alloc"
)

// MetricsObserver is notified after every successful table resize.
type MetricsObserver interface {
	OnResize(oldCap, newCap, length int, d time.Duration)
}

type options struct {
	allocator alloc.Allocator
	hasher    Hasher
	logger    *slog.Logger
	observer  MetricsObserver
}

// Option configures a Map.
type Option func(*options)

// WithAllocator sets the allocator that backs the bucket table.
// By default each map owns a private alloc.Heap.
func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithHasher sets the key hash function. Defaults to FNV1a.
func WithHasher(h Hasher) Option {
	return func(o *options) {
		o.hasher = h
	}
}

// WithLogger sets the logger for the map.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsObserver sets the observer notified about resizes.
func WithMetricsObserver(obs MetricsObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func applyOptions(opts []Option) options {
	o := options{
		hasher: FNV1a,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.allocator == nil {
		o.allocator = alloc.NewHeap()
	}
	if o.hasher == nil {
		o.hasher = FNV1a
	}
	return o
}
