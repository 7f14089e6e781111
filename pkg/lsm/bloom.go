package lsm

import (
	"bytes"

	bloomfilter "github.com/bits-and-blooms/bloom/v3"
)

// BloomFilter is the collaborator interface an SstBuilder feeds every
// key into and an SST consults before touching disk. Bloom filters are
// explicitly out of core scope: the SST format only calls through this
// contract and serialises whatever bytes MarshalBinary returns.
type BloomFilter interface {
	Add(key []byte)
	MayContain(key []byte) bool
	MarshalBinary() ([]byte, error)
}

// NewBloomFilter returns the default BloomFilter, backed by
// github.com/bits-and-blooms/bloom/v3 and sized at bitsPerKey bits per
// expected key, with the hash count chosen by estimateHashCount. A
// bitsPerKey of 0 returns nil, signalling "no filter" to callers.
func NewBloomFilter(expectedKeys int, bitsPerKey uint) BloomFilter {
	if bitsPerKey == 0 {
		return nil
	}
	if expectedKeys <= 0 {
		expectedKeys = 1
	}
	return &libBloomFilter{inner: bloomfilter.New(uint(expectedKeys)*bitsPerKey, estimateHashCount(bitsPerKey))}
}

// estimateHashCount picks a hash-function count close to the
// information-theoretic optimum k = (m/n)*ln2 for the configured bits
// per key.
func estimateHashCount(bitsPerKey uint) uint {
	k := uint(float64(bitsPerKey) * 0.6931472)
	if k < 1 {
		k = 1
	}
	if k > 30 {
		k = 30
	}
	return k
}

type libBloomFilter struct {
	inner *bloomfilter.BloomFilter
}

func (b *libBloomFilter) Add(key []byte) {
	b.inner.Add(key)
}

func (b *libBloomFilter) MayContain(key []byte) bool {
	return b.inner.Test(key)
}

func (b *libBloomFilter) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.inner.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBloomFilter reverses MarshalBinary. A zero-length payload
// means no filter was configured for the SST; decodeBloomFilter then
// returns a nil BloomFilter, and every probe must fall through to disk.
func decodeBloomFilter(data []byte) (BloomFilter, error) {
	if len(data) == 0 {
		return nil, nil
	}
	inner := &bloomfilter.BloomFilter{}
	if _, err := inner.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, newCorruptionError("decodeBloomFilter", "failed to parse bloom filter section: "+err.Error())
	}
	return &libBloomFilter{inner: inner}, nil
}
