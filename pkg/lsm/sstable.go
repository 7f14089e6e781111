package lsm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// BlockMeta records where a block begins within its SST file and the
// block's minimum key, letting the read path locate a block without
// scanning the file.
type BlockMeta struct {
	Offset   uint32
	FirstKey []byte
}

func encodeBlockMetas(metas []BlockMeta) []byte {
	var buf []byte
	for _, m := range metas {
		buf = binary.LittleEndian.AppendUint32(buf, m.Offset)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(m.FirstKey)))
		buf = append(buf, m.FirstKey...)
	}
	return buf
}

// SstBuilder accumulates sorted key-value pairs across one or more
// Blocks and produces an SST file. Keys must arrive in ascending
// order; the core never produces duplicate keys within one SST.
type SstBuilder struct {
	blockSize   int
	compressor  Compressor
	bitsPerKey  uint
	current     *BlockBuilder
	blocksBuf   []byte
	metas       []BlockMeta
	firstKey    []byte
	numKeys     int
	bloomKeys   [][]byte
}

// NewSstBuilder creates a builder targeting blockSize bytes per block,
// with no compression and no bloom filter. Use the With* methods to
// configure collaborators before adding entries.
func NewSstBuilder(blockSize int) *SstBuilder {
	return &SstBuilder{
		blockSize:  blockSize,
		compressor: NoCompression,
		current:    NewBlockBuilder(blockSize),
	}
}

// WithCompressor selects the Compressor applied to each sealed block.
func (b *SstBuilder) WithCompressor(c Compressor) *SstBuilder {
	if c != nil {
		b.compressor = c
	}
	return b
}

// WithBloomFilter enables a bloom filter sized at bitsPerKey bits per
// key once the builder knows how many keys it holds.
func (b *SstBuilder) WithBloomFilter(bitsPerKey uint) *SstBuilder {
	b.bitsPerKey = bitsPerKey
	return b
}

// EstimatedSize returns the number of bytes written to the blocks
// buffer so far (not counting the block currently being assembled).
func (b *SstBuilder) EstimatedSize() int {
	return len(b.blocksBuf)
}

// Add inserts the next key-value pair. Callers must supply keys in
// ascending order.
func (b *SstBuilder) Add(key, value []byte) {
	if b.current.IsEmpty() {
		b.metas = append(b.metas, BlockMeta{
			Offset:   uint32(b.EstimatedSize()),
			FirstKey: append([]byte(nil), key...),
		})
	}
	if b.numKeys == 0 {
		b.firstKey = append([]byte(nil), key...)
	}
	b.numKeys++
	if b.bitsPerKey > 0 {
		b.bloomKeys = append(b.bloomKeys, append([]byte(nil), key...))
	}

	if b.current.Add(key, value) {
		return
	}

	b.sealCurrentBlock()
	b.current = NewBlockBuilder(b.blockSize)
	b.metas = append(b.metas, BlockMeta{
		Offset:   uint32(b.EstimatedSize()),
		FirstKey: append([]byte(nil), key...),
	})
	if !b.current.Add(key, value) {
		// A single entry exceeding block_size is still admitted into an
		// empty block per the builder contract, so this path is only
		// reachable if Add itself violates its own precondition.
		panic(newPreconditionError("SstBuilder.Add", "entry cannot fit into an empty block"))
	}
}

func (b *SstBuilder) sealCurrentBlock() {
	if b.current.IsEmpty() {
		return
	}
	block := b.current.Build()
	b.blocksBuf = append(b.blocksBuf, block.Encode(b.compressor)...)
}

// Build finalises the SST: seals the trailing block, writes the meta
// region and bloom filter, and materialises a FileObject at path via
// factory (CreateFileObject if factory is nil).
func (b *SstBuilder) Build(id uint32, cache BlockCache, path string, factory FileObjectFactory) (*SST, error) {
	b.sealCurrentBlock()

	if len(b.metas) == 0 {
		return nil, newPreconditionError("SstBuilder.Build", "cannot build an SST with no blocks")
	}

	metaOffset := uint32(len(b.blocksBuf))

	var bloom BloomFilter
	if b.bitsPerKey > 0 {
		bloom = NewBloomFilter(b.numKeys, b.bitsPerKey)
		for _, k := range b.bloomKeys {
			bloom.Add(k)
		}
	}

	var bloomBytes []byte
	if bloom != nil {
		var err error
		bloomBytes, err = bloom.MarshalBinary()
		if err != nil {
			return nil, err
		}
	}

	buf := append([]byte(nil), b.blocksBuf...)
	buf = append(buf, encodeBlockMetas(b.metas)...)
	buf = binary.LittleEndian.AppendUint32(buf, metaOffset)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(bloomBytes)))
	buf = append(buf, bloomBytes...)

	if factory == nil {
		factory = CreateFileObject
	}
	file, err := factory(path, buf)
	if err != nil {
		return nil, err
	}

	return &SST{
		id:           id,
		file:         file,
		blockMetas:   b.metas,
		blockMetaEnd: metaOffset,
		bloom:        bloom,
		cache:        cache,
		compressor:   b.compressor,
		firstKey:     b.firstKey,
	}, nil
}

// SST is an ordered, immutable on-disk file of blocks plus an index.
// It is shared among readers by reference and never mutated once
// built or opened.
type SST struct {
	id           uint32
	file         FileObject
	blockMetas   []BlockMeta
	blockMetaEnd uint32 // meta_offset: also the end of the last block
	bloom        BloomFilter
	cache        BlockCache
	compressor   Compressor
	firstKey     []byte
}

// ID returns the identifier this SST was built or opened with.
func (s *SST) ID() uint32 { return s.id }

// NumBlocks reports how many blocks the SST holds.
func (s *SST) NumBlocks() int { return len(s.blockMetas) }

// OpenSST reads an existing SST's trailing index (and bloom filter, if
// present) without eagerly reading any data block.
func OpenSST(id uint32, cache BlockCache, file FileObject, compressor Compressor) (*SST, error) {
	if compressor == nil {
		compressor = NoCompression
	}

	size := file.Size()
	if size < 8 {
		return nil, newSSTCorruptionError("OpenSST", id, "file too small to contain a trailer")
	}

	bloomLenBuf, err := file.ReadAt(size-4, 4)
	if err != nil {
		return nil, err
	}
	bloomLen := int(binary.LittleEndian.Uint32(bloomLenBuf))

	metaOffsetBuf, err := file.ReadAt(size-8-int64(bloomLen), 4)
	if err != nil {
		return nil, err
	}
	metaOffset := binary.LittleEndian.Uint32(metaOffsetBuf)

	metaRegionLen := int(size) - 8 - bloomLen - int(metaOffset)
	if metaRegionLen < 0 {
		return nil, newSSTCorruptionError("OpenSST", id, "meta_offset beyond file size")
	}
	metaBuf, err := file.ReadAt(int64(metaOffset), metaRegionLen)
	if err != nil {
		return nil, err
	}

	var bloomBuf []byte
	if bloomLen > 0 {
		bloomBuf, err = file.ReadAt(size-8-int64(bloomLen), bloomLen)
		if err != nil {
			return nil, err
		}
		bloomBuf = bloomBuf[4:] // drop the length prefix we just read
	}

	metas, err := decodeBlockMetas(metaBuf)
	if err != nil {
		return nil, err
	}

	bloom, err := decodeBloomFilter(bloomBuf)
	if err != nil {
		return nil, err
	}

	var firstKey []byte
	if len(metas) > 0 {
		firstKey = metas[0].FirstKey
	}

	return &SST{
		id:           id,
		file:         file,
		blockMetas:   metas,
		blockMetaEnd: metaOffset,
		bloom:        bloom,
		cache:        cache,
		compressor:   compressor,
		firstKey:     firstKey,
	}, nil
}

// decodeBlockMetas decodes metas from the byte span between
// meta_offset and the start of the trailer, where the number of metas
// is implied by the span length (each meta is self-describing via its
// first_key_len field, so metas are decoded until the buffer is
// exhausted).
func decodeBlockMetas(buf []byte) ([]BlockMeta, error) {
	var metas []BlockMeta
	pos := 0
	for pos < len(buf) {
		if pos+6 > len(buf) {
			return nil, newCorruptionError("decodeBlockMetas", "meta region truncated")
		}
		offset := binary.LittleEndian.Uint32(buf[pos : pos+4])
		pos += 4
		keyLen := int(binary.LittleEndian.Uint16(buf[pos : pos+2]))
		pos += 2
		if pos+keyLen > len(buf) {
			return nil, newCorruptionError("decodeBlockMetas", "first_key overruns meta region")
		}
		firstKey := append([]byte(nil), buf[pos:pos+keyLen]...)
		pos += keyLen
		metas = append(metas, BlockMeta{Offset: offset, FirstKey: firstKey})
	}
	return metas, nil
}

// MayContain reports whether k could be in this SST. A false result
// is conclusive (no disk access needed); true (or no bloom filter
// configured) means the caller must still probe a block.
func (s *SST) MayContain(k []byte) bool {
	if s.bloom == nil {
		return true
	}
	return s.bloom.MayContain(k)
}

// blockRange returns the [start, end) byte range of block idx within
// the file.
func (s *SST) blockRange(idx int) (start, end uint32) {
	start = s.blockMetas[idx].Offset
	if idx == len(s.blockMetas)-1 {
		end = s.blockMetaEnd
	} else {
		end = s.blockMetas[idx+1].Offset
	}
	return start, end
}

// ReadBlock loads and decodes block idx, consulting the shared
// BlockCache first when one is configured.
func (s *SST) ReadBlock(idx int) (*Block, error) {
	if idx < 0 || idx >= len(s.blockMetas) {
		return nil, newSSTCorruptionError("SST.ReadBlock", s.id, fmt.Sprintf("block index %d out of range (%d blocks)", idx, len(s.blockMetas)))
	}

	if s.cache != nil {
		if block, ok := s.cache.Get(s.id, idx); ok {
			return block, nil
		}
	}

	start, end := s.blockRange(idx)
	raw, err := s.file.ReadAt(int64(start), int(end-start))
	if err != nil {
		return nil, err
	}

	block, err := DecodeBlock(raw, s.compressor)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(s.id, idx, block)
	}
	return block, nil
}

// FindBlockIdx returns the unique block that may contain k: the
// partition point over block_metas by first_key <= k, minus one
// (saturating at 0).
func (s *SST) FindBlockIdx(k []byte) int {
	idx := sort.Search(len(s.blockMetas), func(i int) bool {
		return bytes.Compare(s.blockMetas[i].FirstKey, k) > 0
	})
	if idx == 0 {
		return 0
	}
	return idx - 1
}
