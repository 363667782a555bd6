package hashmap

import (
	"bytes"
	"encoding/binary"

	"github.com/hupe1980/memkit/alloc"
	"github.com/hupe1980/memkit/internal/conv"
	"github.com/hupe1980/memkit/internal/hash"
)

const (
	metaSize    = 8
	distBits    = 16
	maxDistance = 1<<distBits - 1
	numSpares   = 2
)

// distanceLimit is the largest distance a placement may write. Tests lower it
// to drive the overflow path on small tables.
var distanceLimit = maxDistance

func packMeta(dist int, h48 uint64) uint64 {
	return h48<<distBits | uint64(dist) //nolint:gosec // 0 <= dist <= maxDistance
}

func unpackMeta(m uint64) (dist int, h48 uint64) {
	return int(m & maxDistance), m >> distBits
}

func readMeta(b []byte) (int, uint64) {
	return unpackMeta(binary.LittleEndian.Uint64(b))
}

func writeMeta(b []byte, dist int, h48 uint64) {
	binary.LittleEndian.PutUint64(b, packMeta(dist, h48))
}

// layout is the byte layout of one bucket: metadata, padded key, padded value.
type layout struct {
	keySize    int
	valueSize  int
	valueOff   int
	bucketSize int
}

func newLayout(keySize, valueSize int) (layout, error) {
	keyPad, err := conv.AlignUp(keySize, metaSize)
	if err != nil {
		return layout{}, err
	}
	valuePad, err := conv.AlignUp(valueSize, metaSize)
	if err != nil {
		return layout{}, err
	}
	return layout{
		keySize:    keySize,
		valueSize:  valueSize,
		valueOff:   metaSize + keyPad,
		bucketSize: metaSize + keyPad + valuePad,
	}, nil
}

func (l layout) key(b []byte) []byte {
	return b[metaSize : metaSize+l.keySize]
}

func (l layout) value(b []byte) []byte {
	return b[l.valueOff : l.valueOff+l.valueSize]
}

// table is a view over one allocator block laid out as
// [spare0][spare1][bucket0 ... bucketN-1].
type table struct {
	layout
	data     []byte
	capacity int
	mask     uint64
}

// newTable allocates a zeroed table with capacity buckets (a power of two).
func newTable(a alloc.Allocator, l layout, capacity int) (table, alloc.Block, error) {
	size, err := conv.MulInt(capacity+numSpares, l.bucketSize)
	if err != nil {
		return table{}, alloc.Block{}, err
	}
	mask, err := conv.IntToUint64(capacity - 1)
	if err != nil {
		return table{}, alloc.Block{}, err
	}
	blk, err := a.Allocate(size, alloc.DefaultAlignment, true)
	if err != nil {
		return table{}, alloc.Block{}, err
	}
	return table{
		layout:   l,
		data:     blk.Bytes(),
		capacity: capacity,
		mask:     mask,
	}, blk, nil
}

func (t *table) spare(n int) []byte {
	off := n * t.bucketSize
	return t.data[off : off+t.bucketSize : off+t.bucketSize]
}

func (t *table) bucket(i uint64) []byte {
	off := (int(i) + numSpares) * t.bucketSize //nolint:gosec // i <= mask
	return t.data[off : off+t.bucketSize : off+t.bucketSize]
}

func (t *table) home(h uint64) uint64 {
	return h & t.mask
}

func (t *table) next(i uint64) uint64 {
	return (i + 1) & t.mask
}

// setCandidate writes key and value into spare0. Padding is zeroed.
func (t *table) setCandidate(key, value []byte) {
	c := t.spare(0)
	clear(c)
	copy(t.key(c), key)
	copy(t.value(c), value)
}

// find returns the bucket index holding key, or false.
//
// The probe stops at an empty bucket, at a resident closer to its home than
// the probe is to the key's home, or after visiting every bucket.
func (t *table) find(h uint64, key []byte) (uint64, bool) {
	h48 := hash.Truncate48(h)
	i := t.home(h)
	for dist := 1; dist <= t.capacity; dist++ {
		b := t.bucket(i)
		rd, rh := readMeta(b)
		if rd == 0 || rd < dist {
			return 0, false
		}
		if rh == h48 && bytes.Equal(t.key(b), key) {
			return i, true
		}
		i = t.next(i)
	}
	return 0, false
}

// place stores the entry held in spare0 using Robin Hood probing from the
// home bucket of h. When dedup is set a resident with the same key gets its
// value overwritten instead. It reports whether a bucket became occupied.
//
// The table must have at least one empty bucket.
func (t *table) place(h uint64, dedup bool) (bool, error) {
	cand, tmp := t.spare(0), t.spare(1)
	h48 := hash.Truncate48(h)
	i := t.home(h)
	dist := 1
	for {
		if dist > distanceLimit {
			return false, errDistanceOverflow
		}
		b := t.bucket(i)
		rd, rh := readMeta(b)
		if rd == 0 {
			writeMeta(cand, dist, h48)
			copy(b, cand)
			return true, nil
		}
		if dedup && rh == h48 && bytes.Equal(t.key(b), t.key(cand)) {
			copy(t.value(b), t.value(cand))
			return false, nil
		}
		if rd < dist {
			// Steal the bucket and carry the resident on.
			writeMeta(cand, dist, h48)
			copy(tmp, b)
			copy(b, cand)
			copy(cand, tmp)
			dist, h48 = rd, rh
			dedup = false
		}
		i = t.next(i)
		dist++
	}
}

// placementDistance returns the largest distance place would write for a
// candidate with hash h and the given key, without modifying the table.
// It returns 0 when the key is already present.
func (t *table) placementDistance(h uint64, key []byte) int {
	h48 := hash.Truncate48(h)
	i := t.home(h)
	dist, longest := 1, 0
	dedup := true
	for n := 0; n < t.capacity; n++ {
		rd, rh := readMeta(t.bucket(i))
		if rd == 0 {
			return max(longest, dist)
		}
		if dedup && rh == h48 && bytes.Equal(t.key(t.bucket(i)), key) {
			return 0
		}
		if rd < dist {
			longest = max(longest, dist)
			dist = rd
			dedup = false
		}
		i = t.next(i)
		dist++
	}
	return max(longest, dist)
}

// removeAt empties bucket i and shifts the following cluster back.
func (t *table) removeAt(i uint64) {
	gap := i
	for n := 1; n < t.capacity; n++ {
		nb := t.bucket(t.next(gap))
		nd, nh := readMeta(nb)
		if nd <= 1 {
			break
		}
		g := t.bucket(gap)
		copy(g, nb)
		writeMeta(g, nd-1, nh)
		gap = t.next(gap)
	}
	clear(t.bucket(gap))
}

// clearBuckets empties every bucket.
func (t *table) clearBuckets() {
	clear(t.data[numSpares*t.bucketSize:])
}

// scan returns the first occupied bucket index at or after i.
func (t *table) scan(i int) (int, bool) {
	for ; i < t.capacity; i++ {
		if d, _ := readMeta(t.bucket(uint64(i))); d != 0 { //nolint:gosec // i >= 0
			return i, true
		}
	}
	return 0, false
}
