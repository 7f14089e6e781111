package lsm

import "encoding/binary"

// BlockBuilder accumulates sorted key-value pairs into a single Block,
// refusing additions once the soft block_size target would be exceeded
// (unless the block is still empty, in which case the first entry is
// always admitted regardless of size).
type BlockBuilder struct {
	data      []byte
	offsets   []uint16
	blockSize int
}

// NewBlockBuilder creates a builder targeting blockSize bytes per block.
func NewBlockBuilder(blockSize int) *BlockBuilder {
	return &BlockBuilder{blockSize: blockSize}
}

// estimatedSize returns the encoded size of the block built so far:
// data + offsets (u16 each) + trailing count (u16).
func (bb *BlockBuilder) estimatedSize() int {
	return len(bb.data) + len(bb.offsets)*2 + 2
}

// Add inserts a key-value pair, returning false if the block is full and
// the caller should roll a new block. Keys must be non-empty; the first
// entry in an empty block is always admitted.
func (bb *BlockBuilder) Add(key, value []byte) bool {
	if len(key) == 0 {
		panic(newPreconditionError("BlockBuilder.Add", "key must not be empty"))
	}

	entrySize := 2 + len(key) + 2 + len(value)
	newSize := bb.estimatedSize() + entrySize + 2 // +2 for this entry's new offset
	if !bb.IsEmpty() && newSize > bb.blockSize {
		return false
	}

	offset := uint16(len(bb.data))
	bb.data = binary.LittleEndian.AppendUint16(bb.data, uint16(len(key)))
	bb.data = append(bb.data, key...)
	bb.data = binary.LittleEndian.AppendUint16(bb.data, uint16(len(value)))
	bb.data = append(bb.data, value...)
	bb.offsets = append(bb.offsets, offset)

	return true
}

// IsEmpty reports whether any entry has been added yet.
func (bb *BlockBuilder) IsEmpty() bool {
	return len(bb.offsets) == 0
}

// Build finalises the accumulated entries into an immutable Block.
// Building an empty block is a precondition violation.
func (bb *BlockBuilder) Build() *Block {
	if bb.IsEmpty() {
		panic(newPreconditionError("BlockBuilder.Build", "cannot build an empty block"))
	}
	return &Block{data: bb.data, offsets: bb.offsets}
}
