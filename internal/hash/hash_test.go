package hash

import (
	stdfnv "hash/fnv"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
)

func TestFNV1a64_KnownVectors(t *testing.T) {
	// Reference values from the FNV test vectors.
	assert.Equal(t, uint64(0xcbf29ce484222325), FNV1a64(nil))
	assert.Equal(t, uint64(0xaf63dc4c8601ec8c), FNV1a64([]byte("a")))
	assert.Equal(t, uint64(0x85944171f73967e8), FNV1a64([]byte("foobar")))
}

func TestFNV1a64_MatchesStdlib(t *testing.T) {
	inputs := [][]byte{
		[]byte("abc"),
		[]byte("ahmed here"),
		make([]byte, 20),
		{0xff, 0x00, 0x7f},
	}
	for _, in := range inputs {
		h := stdfnv.New64a()
		_, _ = h.Write(in)
		assert.Equal(t, h.Sum64(), FNV1a64(in), "input %q", in)
	}
}

func TestXXH64(t *testing.T) {
	in := []byte("new bucket")
	assert.Equal(t, xxhash.Sum64(in), XXH64(in))
	assert.NotEqual(t, XXH64([]byte("abc")), XXH64([]byte("abd")))
}

func TestTruncate48(t *testing.T) {
	assert.Equal(t, uint64(0x0000_ffff_ffff_ffff), Truncate48(^uint64(0)))
	assert.Equal(t, uint64(0x1234), Truncate48(0xabcd_0000_0000_1234))
	assert.Zero(t, Truncate48(1<<48))
}
