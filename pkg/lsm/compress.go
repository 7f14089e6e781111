package lsm

import "github.com/golang/snappy"

// Compressor is the collaborator interface consumed by Block.Encode and
// DecodeBlock. Compression is explicitly out of core scope per the
// design: the block/SST format never assumes a particular algorithm,
// it only calls through this narrow contract.
type Compressor interface {
	Compress(src []byte) []byte
	Decompress(src []byte) ([]byte, error)
}

// identityCompressor is the default Compressor: a no-op pass-through.
type identityCompressor struct{}

func (identityCompressor) Compress(src []byte) []byte { return src }

func (identityCompressor) Decompress(src []byte) ([]byte, error) { return src, nil }

// NoCompression is the zero-cost Compressor used when Options.EnableCompression
// is false.
var NoCompression Compressor = identityCompressor{}

// snappyCompressor wraps github.com/golang/snappy for block payloads.
type snappyCompressor struct{}

// SnappyCompression is a Compressor that frames each block independently
// through Snappy's block format, selected via Options.EnableCompression.
var SnappyCompression Compressor = snappyCompressor{}

func (snappyCompressor) Compress(src []byte) []byte {
	return snappy.Encode(nil, src)
}

func (snappyCompressor) Decompress(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}
