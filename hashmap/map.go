package hashmap

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/hupe1980/memkit/alloc"
	"github.com/hupe1980/memkit/internal/conv"
)

// MinCapacity is the smallest bucket count a Map uses.
const MinCapacity = 16

// DestroyFunc is called for each entry by Clear and Close, in iteration
// order, before the entry's memory is released.
type DestroyFunc func(key, value []byte)

// Map is a Robin Hood hash map over fixed-size byte keys and values.
type Map struct {
	t        table
	block    alloc.Block
	length   int
	alloc    alloc.Allocator
	hasher   Hasher
	logger   *slog.Logger
	observer MetricsObserver
	closed   bool
}

// New creates a map with MinCapacity buckets.
func New(keySize, valueSize int, opts ...Option) (*Map, error) {
	return NewWithCapacity(keySize, valueSize, MinCapacity, opts...)
}

// NewWithCapacity creates a map with at least capacity buckets. The bucket
// count is rounded up to a power of two and never below MinCapacity.
func NewWithCapacity(keySize, valueSize, capacity int, opts ...Option) (*Map, error) {
	if keySize <= 0 || valueSize <= 0 {
		return nil, fmt.Errorf("%w: key size %d and value size %d must be positive", ErrInvalidArgument, keySize, valueSize)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, capacity)
	}

	l, err := newLayout(keySize, valueSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	c, err := conv.NextPowerOfTwo(max(capacity, MinCapacity))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	o := applyOptions(opts)

	t, blk, err := newTable(o.allocator, l, c)
	if err != nil {
		return nil, fmt.Errorf("hashmap: allocate %d buckets: %w", c, err)
	}

	return &Map{
		t:        t,
		block:    blk,
		alloc:    o.allocator,
		hasher:   o.hasher,
		logger:   o.logger,
		observer: o.observer,
	}, nil
}

// Len returns the number of entries.
func (m *Map) Len() int { return m.length }

// Cap returns the number of buckets.
func (m *Map) Cap() int { return m.t.capacity }

// IsEmpty reports whether the map has no entries.
func (m *Map) IsEmpty() bool { return m.length == 0 }

// KeySize returns the key length in bytes.
func (m *Map) KeySize() int { return m.t.keySize }

// ValueSize returns the value length in bytes.
func (m *Map) ValueSize() int { return m.t.valueSize }

// Insert adds key with value, or overwrites the value if key is present.
//
// A full table is doubled before anything is written, so when growing fails
// the map is left exactly as it was and the allocator error is returned.
func (m *Map) Insert(key, value []byte) error {
	if m.closed {
		return ErrClosed
	}
	if len(key) != m.t.keySize || len(value) != m.t.valueSize {
		return fmt.Errorf("%w: got key of %d bytes and value of %d bytes, want %d and %d",
			ErrInvalidArgument, len(key), len(value), m.t.keySize, m.t.valueSize)
	}

	if m.length == m.t.capacity {
		if err := m.grow(); err != nil {
			return err
		}
	}

	h := m.hasher(key)

	// Below this size no probe can get longer than the metadata can record.
	if m.t.capacity > distanceLimit {
		for m.t.placementDistance(h, key) > distanceLimit {
			if err := m.grow(); err != nil {
				return err
			}
		}
	}

	m.t.setCandidate(key, value)
	added, err := m.t.place(h, true)
	if err != nil {
		return err
	}
	if added {
		m.length++
	}
	return nil
}

// Get returns the value stored for key. The returned slice aliases the table
// and is valid until the next modification of the map.
func (m *Map) Get(key []byte) ([]byte, bool) {
	if m.closed || len(key) != m.t.keySize {
		return nil, false
	}
	i, ok := m.t.find(m.hasher(key), key)
	if !ok {
		return nil, false
	}
	return m.t.value(m.t.bucket(i)), true
}

// Has reports whether key is present.
func (m *Map) Has(key []byte) bool {
	_, ok := m.Get(key)
	return ok
}

// Remove deletes key and returns a copy of its value.
//
// The table is halved when it is left at most a quarter full. A failed
// shrink is logged and does not affect the removal.
func (m *Map) Remove(key []byte) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if len(key) != m.t.keySize {
		return nil, fmt.Errorf("%w: got key of %d bytes, want %d", ErrInvalidArgument, len(key), m.t.keySize)
	}

	i, ok := m.t.find(m.hasher(key), key)
	if !ok {
		return nil, ErrNotFound
	}

	value := bytes.Clone(m.t.value(m.t.bucket(i)))
	m.t.removeAt(i)
	m.length--

	if m.t.capacity > MinCapacity && m.length <= m.t.capacity/4 {
		if err := m.resize(m.t.capacity / 2); err != nil && m.logger != nil {
			m.logger.Warn("hashmap shrink failed", "capacity", m.t.capacity, "length", m.length, "error", err)
		}
	}

	return value, nil
}

// Clear removes every entry, calling fn (if not nil) for each one first.
// The bucket table keeps its size.
func (m *Map) Clear(fn DestroyFunc) {
	if m.closed {
		return
	}
	m.destroyEntries(fn)
	m.t.clearBuckets()
	m.length = 0
}

// Close calls fn (if not nil) for each entry and releases the bucket table.
// Close is idempotent.
func (m *Map) Close(fn DestroyFunc) {
	if m.closed {
		return
	}
	m.destroyEntries(fn)
	m.alloc.Free(m.block)
	m.block = alloc.Block{}
	m.t.data = nil
	m.length = 0
	m.closed = true
}

func (m *Map) destroyEntries(fn DestroyFunc) {
	if fn == nil {
		return
	}
	for k, v := range m.All() {
		fn(k, v)
	}
}

// Iter returns an iterator over the entries in bucket order.
func (m *Map) Iter() *Iterator {
	return &Iterator{m: m}
}

// All returns an iterator over the entries in bucket order. The map must
// not be modified during iteration.
func (m *Map) All() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		it := m.Iter()
		for {
			k, v, ok := it.Next()
			if !ok || !yield(k, v) {
				return
			}
		}
	}
}

func (m *Map) grow() error {
	c, err := conv.MulInt(m.t.capacity, 2)
	if err != nil {
		return fmt.Errorf("%w: %w", alloc.ErrAllocationFailed, err)
	}
	return m.resize(c)
}

// resize rehashes every entry into a new table of newCap buckets. On
// failure the current table is kept unchanged.
func (m *Map) resize(newCap int) error {
	start := time.Now()
	oldCap := m.t.capacity

	nt, blk, err := newTable(m.alloc, m.t.layout, newCap)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("hashmap resize failed", "from", oldCap, "to", newCap, "length", m.length, "error", err)
		}
		return fmt.Errorf("hashmap: resize %d -> %d buckets: %w", oldCap, newCap, err)
	}

	for i := uint64(0); i < uint64(oldCap); i++ { //nolint:gosec // capacity > 0
		b := m.t.bucket(i)
		d, h48 := readMeta(b)
		if d == 0 {
			continue
		}
		// The stored 48 bits cover every home index a table can address.
		copy(nt.spare(0), b)
		if _, err := nt.place(h48, false); err != nil {
			m.alloc.Free(blk)
			return fmt.Errorf("hashmap: resize %d -> %d buckets: %w", oldCap, newCap, err)
		}
	}

	m.alloc.Free(m.block)
	m.t = nt
	m.block = blk

	elapsed := time.Since(start)
	if m.logger != nil {
		m.logger.Debug("hashmap resized", "from", oldCap, "to", newCap, "length", m.length, "duration", elapsed)
	}
	if m.observer != nil {
		m.observer.OnResize(oldCap, newCap, m.length, elapsed)
	}
	return nil
}
