package hashmap

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memkit/alloc"
	"github.com/hupe1980/memkit/internal/hash"
	"github.com/hupe1980/memkit/testutil"
)

// checkInvariants verifies the stored hashes, the probe distances, the Robin
// Hood ordering of every cluster and the entry count.
func checkInvariants(t *testing.T, m *Map) {
	t.Helper()

	n := 0
	for i := uint64(0); i < uint64(m.t.capacity); i++ {
		b := m.t.bucket(i)
		d, h48 := readMeta(b)
		if d == 0 {
			continue
		}
		n++

		h := m.hasher(m.t.key(b))
		require.Equal(t, hash.Truncate48(h), h48, "bucket %d: stored hash", i)

		want := int((i-m.t.home(h))&m.t.mask) + 1
		require.Equal(t, want, d, "bucket %d: distance", i)

		nd, _ := readMeta(m.t.bucket(m.t.next(i)))
		require.LessOrEqual(t, nd, d+1, "bucket %d: next entry skipped ahead", i)
	}
	require.Equal(t, m.length, n, "occupied buckets")
}

func key20(s string) []byte {
	return testutil.FixedKey(s, 20)
}

func TestMap_Scenario(t *testing.T) {
	m, err := New(20, 4)
	require.NoError(t, err)
	defer m.Close(nil)

	require.NoError(t, m.Insert(key20("abc"), testutil.Int32(1)))
	require.NoError(t, m.Insert(key20("ahmed here"), testutil.Int32(2)))
	require.NoError(t, m.Insert(key20("abcd"), testutil.Int32(3)))
	require.NoError(t, m.Insert(key20("abc"), testutil.Int32(4)))

	assert.Equal(t, 3, m.Len())

	v, ok := m.Get(key20("abc"))
	require.True(t, ok)
	assert.Equal(t, int32(4), testutil.ToInt32(v))

	v, ok = m.Get(key20("abcd"))
	require.True(t, ok)
	assert.Equal(t, int32(3), testutil.ToInt32(v))

	_, ok = m.Get(key20("xyz"))
	assert.False(t, ok)

	require.NoError(t, m.Insert(key20("new bucket"), testutil.Int32(100)))
	assert.Equal(t, 4, m.Len())

	removed, err := m.Remove(key20("new bucket"))
	require.NoError(t, err)
	assert.Equal(t, int32(100), testutil.ToInt32(removed))
	assert.Equal(t, 3, m.Len())

	checkInvariants(t, m)
}

func TestMap_New(t *testing.T) {
	t.Run("default capacity", func(t *testing.T) {
		m, err := New(8, 8)
		require.NoError(t, err)
		assert.Equal(t, MinCapacity, m.Cap())
		assert.True(t, m.IsEmpty())
		assert.Equal(t, 8, m.KeySize())
		assert.Equal(t, 8, m.ValueSize())
	})

	t.Run("rounds up to power of two", func(t *testing.T) {
		m, err := NewWithCapacity(8, 8, 100)
		require.NoError(t, err)
		assert.Equal(t, 128, m.Cap())
	})

	t.Run("floor", func(t *testing.T) {
		m, err := NewWithCapacity(8, 8, 0)
		require.NoError(t, err)
		assert.Equal(t, MinCapacity, m.Cap())
	})

	t.Run("invalid sizes", func(t *testing.T) {
		_, err := New(0, 4)
		require.ErrorIs(t, err, ErrInvalidArgument)

		_, err = New(4, -1)
		require.ErrorIs(t, err, ErrInvalidArgument)

		_, err = NewWithCapacity(4, 4, -1)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("allocation failure", func(t *testing.T) {
		fb, err := alloc.NewFixedBuffer(make([]byte, 64))
		require.NoError(t, err)

		_, err = New(8, 8, WithAllocator(fb))
		require.ErrorIs(t, err, alloc.ErrCapacityExhausted)
	})
}

func TestMap_Overwrite(t *testing.T) {
	m, err := New(8, 4)
	require.NoError(t, err)

	k := testutil.Uint64Key(42)
	require.NoError(t, m.Insert(k, testutil.Int32(1)))
	require.NoError(t, m.Insert(k, testutil.Int32(2)))

	assert.Equal(t, 1, m.Len())
	v, ok := m.Get(k)
	require.True(t, ok)
	assert.Equal(t, int32(2), testutil.ToInt32(v))
}

func TestMap_RemoveThenAbsent(t *testing.T) {
	m, err := New(8, 4)
	require.NoError(t, err)

	k := testutil.Uint64Key(7)
	require.NoError(t, m.Insert(k, testutil.Int32(7)))

	_, err = m.Remove(k)
	require.NoError(t, err)
	assert.False(t, m.Has(k))

	_, err = m.Remove(k)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMap_InvalidArguments(t *testing.T) {
	m, err := New(8, 4)
	require.NoError(t, err)

	require.ErrorIs(t, m.Insert(nil, testutil.Int32(1)), ErrInvalidArgument)
	require.ErrorIs(t, m.Insert(testutil.Uint64Key(1), nil), ErrInvalidArgument)
	require.ErrorIs(t, m.Insert([]byte("short"), testutil.Int32(1)), ErrInvalidArgument)

	_, ok := m.Get(nil)
	assert.False(t, ok)

	_, err = m.Remove([]byte("short"))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, m.Len())
}

func TestMap_GrowPreservesContents(t *testing.T) {
	heap := alloc.NewHeap()
	m, err := NewWithCapacity(20, 4, 16, WithAllocator(heap))
	require.NoError(t, err)

	keys := testutil.NewRNG(1).DistinctKeys(20, 20)
	for i, k := range keys {
		require.NoError(t, m.Insert(k, testutil.Int32(int32(i))))
	}

	assert.Equal(t, 20, m.Len())
	assert.Equal(t, 32, m.Cap())
	for i, k := range keys {
		v, ok := m.Get(k)
		require.True(t, ok, "key %d", i)
		assert.Equal(t, int32(i), testutil.ToInt32(v))
	}
	checkInvariants(t, m)

	// Only the current table is live.
	assert.Equal(t, 1, heap.Live())

	m.Close(nil)
	assert.Equal(t, 0, heap.Live())
}

// Resizing must report success when the new table was allocated and every
// entry was re-inserted.
func TestMap_ResizeReportsSuccess(t *testing.T) {
	m, err := New(8, 8)
	require.NoError(t, err)

	for i := uint64(0); i < 10; i++ {
		require.NoError(t, m.Insert(testutil.Uint64Key(i), testutil.Uint64Key(i*i)))
	}

	require.NoError(t, m.resize(64))
	assert.Equal(t, 64, m.Cap())
	assert.Equal(t, 10, m.Len())

	require.NoError(t, m.resize(16))
	assert.Equal(t, 16, m.Cap())

	for i := uint64(0); i < 10; i++ {
		v, ok := m.Get(testutil.Uint64Key(i))
		require.True(t, ok)
		assert.Equal(t, testutil.Uint64Key(i*i), v)
	}
	checkInvariants(t, m)
}

func TestMap_FailedGrowLeavesMapUnchanged(t *testing.T) {
	// 40-byte buckets: the 16-bucket table plus spares takes 720 bytes and
	// the 32-bucket table would need 1360.
	arena, err := alloc.NewArena(1024)
	require.NoError(t, err)
	defer arena.Close()

	m, err := New(20, 4, WithAllocator(arena))
	require.NoError(t, err)

	keys := testutil.NewRNG(2).DistinctKeys(17, 20)
	for i, k := range keys[:16] {
		require.NoError(t, m.Insert(k, testutil.Int32(int32(i))))
	}

	var before bytes.Buffer
	before.Write(m.t.data)

	err = m.Insert(keys[16], testutil.Int32(16))
	require.ErrorIs(t, err, alloc.ErrCapacityExhausted)

	assert.Equal(t, 16, m.Len())
	assert.Equal(t, 16, m.Cap())
	assert.Equal(t, before.Bytes(), m.t.data)
	assert.False(t, m.Has(keys[16]))
	for i, k := range keys[:16] {
		v, ok := m.Get(k)
		require.True(t, ok)
		assert.Equal(t, int32(i), testutil.ToInt32(v))
	}
	checkInvariants(t, m)

	// A full table grows before probing, so even an overwrite needs room.
	require.ErrorIs(t, m.Insert(keys[0], testutil.Int32(99)), alloc.ErrCapacityExhausted)
}

func TestMap_Shrink(t *testing.T) {
	m, err := New(8, 8)
	require.NoError(t, err)

	for i := uint64(0); i < 100; i++ {
		require.NoError(t, m.Insert(testutil.Uint64Key(i), testutil.Uint64Key(i)))
	}
	assert.Equal(t, 128, m.Cap())

	i := uint64(0)
	for ; m.Len() > 33; i++ {
		_, err := m.Remove(testutil.Uint64Key(i))
		require.NoError(t, err)
	}
	assert.Equal(t, 128, m.Cap())

	_, err = m.Remove(testutil.Uint64Key(i))
	require.NoError(t, err)
	i++
	assert.Equal(t, 32, m.Len())
	assert.Equal(t, 64, m.Cap())
	checkInvariants(t, m)

	for ; i < 100; i++ {
		_, err := m.Remove(testutil.Uint64Key(i))
		require.NoError(t, err)
	}
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, MinCapacity, m.Cap())
}

func TestMap_Iteration(t *testing.T) {
	m, err := New(8, 8)
	require.NoError(t, err)

	want := make(map[string][]byte)
	for i := uint64(0); i < 50; i++ {
		k := testutil.Uint64Key(i * 31)
		v := testutil.Uint64Key(i)
		require.NoError(t, m.Insert(k, v))
		want[string(k)] = v
	}

	seen := make(map[string][]byte)
	it := m.Iter()
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		assert.True(t, m.Has(k))
		_, dup := seen[string(k)]
		assert.False(t, dup)
		seen[string(k)] = bytes.Clone(v)
	}
	assert.Equal(t, want, seen)

	// Exhausted iterators stay exhausted.
	_, _, ok := it.Next()
	assert.False(t, ok)

	n := 0
	for range m.All() {
		n++
	}
	assert.Equal(t, m.Len(), n)

	n = 0
	for range m.All() {
		n++
		if n == 5 {
			break
		}
	}
	assert.Equal(t, 5, n)
}

func TestMap_Collisions(t *testing.T) {
	constant := func([]byte) uint64 { return 0xdead_beef }

	m, err := New(8, 8, WithHasher(constant))
	require.NoError(t, err)

	for i := uint64(0); i < 40; i++ {
		require.NoError(t, m.Insert(testutil.Uint64Key(i), testutil.Uint64Key(i+1)))
	}
	checkInvariants(t, m)

	for i := uint64(0); i < 40; i++ {
		v, ok := m.Get(testutil.Uint64Key(i))
		require.True(t, ok)
		assert.Equal(t, testutil.Uint64Key(i+1), v)
	}
	assert.False(t, m.Has(testutil.Uint64Key(1000)))

	assert.Equal(t, 41, m.t.placementDistance(constant(nil), testutil.Uint64Key(1000)))
	assert.Equal(t, 0, m.t.placementDistance(constant(nil), testutil.Uint64Key(3)))

	for i := uint64(0); i < 40; i += 2 {
		_, err := m.Remove(testutil.Uint64Key(i))
		require.NoError(t, err)
		checkInvariants(t, m)
	}
	assert.Equal(t, 20, m.Len())

	stats := m.ProbeStats()
	assert.Equal(t, 20, stats.MaxDistance)
	assert.InDelta(t, 10.5, stats.MeanDistance, 1e-9)
}

func TestMap_RandomOperations(t *testing.T) {
	for _, h := range []struct {
		name   string
		hasher Hasher
	}{
		{"fnv1a", FNV1a},
		{"xxhash", XXHash},
	} {
		t.Run(h.name, func(t *testing.T) {
			rng := testutil.NewRNG(99)
			m, err := New(8, 4, WithHasher(h.hasher))
			require.NoError(t, err)

			ref := make(map[uint64]int32)
			for op := 0; op < 4000; op++ {
				k := uint64(rng.Zipf(300, 1.1)) //nolint:gosec // non-negative
				key := testutil.Uint64Key(k)

				switch rng.Intn(3) {
				case 0, 1:
					v := int32(rng.Intn(1 << 20)) //nolint:gosec // bounded
					require.NoError(t, m.Insert(key, testutil.Int32(v)))
					ref[k] = v
				default:
					v, err := m.Remove(key)
					if want, ok := ref[k]; ok {
						require.NoError(t, err)
						assert.Equal(t, want, testutil.ToInt32(v))
						delete(ref, k)
					} else {
						require.ErrorIs(t, err, ErrNotFound)
					}
				}

				require.Equal(t, len(ref), m.Len())
				if op%50 == 0 {
					checkInvariants(t, m)
				}
			}

			checkInvariants(t, m)
			for k, want := range ref {
				v, ok := m.Get(testutil.Uint64Key(k))
				require.True(t, ok)
				assert.Equal(t, want, testutil.ToInt32(v))
			}
		})
	}
}

func TestMap_ClearAndClose(t *testing.T) {
	heap := alloc.NewHeap()
	m, err := New(8, 8, WithAllocator(heap))
	require.NoError(t, err)

	for i := uint64(0); i < 30; i++ {
		require.NoError(t, m.Insert(testutil.Uint64Key(i), testutil.Uint64Key(i)))
	}

	var order [][]byte
	for k := range m.All() {
		order = append(order, bytes.Clone(k))
	}

	var destroyed [][]byte
	m.Clear(func(k, v []byte) {
		assert.Equal(t, k, v)
		destroyed = append(destroyed, bytes.Clone(k))
	})
	assert.Equal(t, order, destroyed)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 32, m.Cap())
	assert.False(t, m.Has(testutil.Uint64Key(1)))
	checkInvariants(t, m)

	require.NoError(t, m.Insert(testutil.Uint64Key(5), testutil.Uint64Key(6)))
	calls := 0
	m.Close(func(_, _ []byte) { calls++ })
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, heap.Live())

	// Close is idempotent and the map rejects further use.
	m.Close(func(_, _ []byte) { calls++ })
	assert.Equal(t, 1, calls)
	require.ErrorIs(t, m.Insert(testutil.Uint64Key(1), testutil.Uint64Key(1)), ErrClosed)
	_, err = m.Remove(testutil.Uint64Key(5))
	require.ErrorIs(t, err, ErrClosed)
	assert.False(t, m.Has(testutil.Uint64Key(5)))
	_, _, ok := m.Iter().Next()
	assert.False(t, ok)
}

func TestMap_FixedBufferBacked(t *testing.T) {
	buf := make([]byte, 4096)
	fb, err := alloc.NewFixedBuffer(buf)
	require.NoError(t, err)

	m, err := New(20, 4, WithAllocator(fb))
	require.NoError(t, err)

	require.NoError(t, m.Insert(key20("abc"), testutil.Int32(1)))
	v, ok := m.Get(key20("abc"))
	require.True(t, ok)
	assert.Equal(t, int32(1), testutil.ToInt32(v))
	assert.Positive(t, fb.Offset())
}

type recordingObserver struct {
	calls [][3]int
}

func (r *recordingObserver) OnResize(oldCap, newCap, length int, _ time.Duration) {
	r.calls = append(r.calls, [3]int{oldCap, newCap, length})
}

func TestMap_ObserverAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := &recordingObserver{}

	m, err := New(8, 8, WithLogger(logger), WithMetricsObserver(obs))
	require.NoError(t, err)

	for i := uint64(0); i < 17; i++ {
		require.NoError(t, m.Insert(testutil.Uint64Key(i), testutil.Uint64Key(i)))
	}
	require.Len(t, obs.calls, 1)
	assert.Equal(t, [3]int{16, 32, 16}, obs.calls[0])
	assert.Contains(t, buf.String(), "hashmap resized")

	for i := uint64(0); i < 9; i++ {
		_, err := m.Remove(testutil.Uint64Key(i))
		require.NoError(t, err)
	}
	require.Len(t, obs.calls, 2)
	assert.Equal(t, [3]int{32, 16, 8}, obs.calls[1])
}

func TestMeta(t *testing.T) {
	d, h := unpackMeta(packMeta(maxDistance, hash.Mask48))
	assert.Equal(t, maxDistance, d)
	assert.Equal(t, uint64(hash.Mask48), h)

	d, h = unpackMeta(packMeta(1, 0x1234))
	assert.Equal(t, 1, d)
	assert.Equal(t, uint64(0x1234), h)

	b := make([]byte, 8)
	writeMeta(b, 3, 0xabcdef)
	assert.Equal(t, []byte{3, 0, 0xef, 0xcd, 0xab, 0, 0, 0}, b)
}

func TestLayout(t *testing.T) {
	l, err := newLayout(20, 4)
	require.NoError(t, err)
	assert.Equal(t, 32, l.valueOff)
	assert.Equal(t, 40, l.bucketSize)

	l, err = newLayout(8, 8)
	require.NoError(t, err)
	assert.Equal(t, 24, l.bucketSize)
}

// clusteredHasher sends every key to home bucket 3 in a 16-bucket table and
// splits them over two homes once the table has 32 buckets.
func clusteredHasher(key []byte) uint64 {
	return binary.LittleEndian.Uint64(key)<<4 | 3
}

func lowerDistanceLimit(t *testing.T, limit int) {
	t.Helper()
	prev := distanceLimit
	distanceLimit = limit
	t.Cleanup(func() { distanceLimit = prev })
}

func TestMap_GrowsWhenDistanceWouldOverflow(t *testing.T) {
	lowerDistanceLimit(t, 8)
	obs := &recordingObserver{}

	m, err := New(8, 8, WithHasher(clusteredHasher), WithMetricsObserver(obs))
	require.NoError(t, err)

	for i := uint64(0); i < 8; i++ {
		require.NoError(t, m.Insert(testutil.Uint64Key(i), testutil.Uint64Key(i)))
	}
	assert.Equal(t, 16, m.Cap())
	assert.Equal(t, 8, m.ProbeStats().MaxDistance)
	assert.Equal(t, 9, m.t.placementDistance(clusteredHasher(testutil.Uint64Key(8)), testutil.Uint64Key(8)))

	// The ninth key would need distance 9: the table grows first.
	require.NoError(t, m.Insert(testutil.Uint64Key(8), testutil.Uint64Key(8)))
	assert.Equal(t, 32, m.Cap())
	assert.Equal(t, 9, m.Len())
	require.Len(t, obs.calls, 1)
	assert.Equal(t, [3]int{16, 32, 8}, obs.calls[0])
	assert.LessOrEqual(t, m.ProbeStats().MaxDistance, 8)

	for i := uint64(0); i < 9; i++ {
		v, ok := m.Get(testutil.Uint64Key(i))
		require.True(t, ok)
		assert.Equal(t, testutil.Uint64Key(i), v)
	}
	checkInvariants(t, m)
}

func TestMap_DistanceOverflowGrowFailureLeavesMapUnchanged(t *testing.T) {
	lowerDistanceLimit(t, 8)

	// 24-byte buckets: 432 bytes for 16 buckets, 816 for 32.
	arena, err := alloc.NewArena(600)
	require.NoError(t, err)
	defer arena.Close()

	m, err := New(8, 8, WithHasher(clusteredHasher), WithAllocator(arena))
	require.NoError(t, err)
	for i := uint64(0); i < 8; i++ {
		require.NoError(t, m.Insert(testutil.Uint64Key(i), testutil.Uint64Key(i)))
	}
	before := bytes.Clone(m.t.data)

	err = m.Insert(testutil.Uint64Key(8), testutil.Uint64Key(8))
	require.ErrorIs(t, err, alloc.ErrCapacityExhausted)
	assert.Equal(t, 8, m.Len())
	assert.Equal(t, 16, m.Cap())
	assert.Equal(t, before, m.t.data)
	assert.False(t, m.Has(testutil.Uint64Key(8)))

	// Overwrites never need a longer probe.
	require.NoError(t, m.Insert(testutil.Uint64Key(7), testutil.Uint64Key(70)))
	v, ok := m.Get(testutil.Uint64Key(7))
	require.True(t, ok)
	assert.Equal(t, testutil.Uint64Key(70), v)
	checkInvariants(t, m)
}
