package lsm

// SstIterator walks a single SST's entries in key order, lazily
// decoding one block at a time.
type SstIterator struct {
	table     *SST
	blockIdx  int
	blockIter *BlockIterator
}

// CreateAndSeekToFirst opens an iterator positioned at the SST's first
// entry.
func CreateAndSeekToFirst(table *SST) (*SstIterator, error) {
	it := &SstIterator{table: table}
	if err := it.seekToBlock(0, nil); err != nil {
		return nil, err
	}
	return it, nil
}

// CreateAndSeekToKey opens an iterator positioned at the first entry
// whose key is >= key, or an invalid iterator if no such entry exists.
func CreateAndSeekToKey(table *SST, key []byte) (*SstIterator, error) {
	it := &SstIterator{table: table}
	if err := it.SeekToKey(key); err != nil {
		return nil, err
	}
	return it, nil
}

// seekToBlock loads blockIdx and positions the inner BlockIterator
// either at its first entry (key == nil) or via SeekToKey(key).
func (it *SstIterator) seekToBlock(blockIdx int, key []byte) error {
	if blockIdx >= it.table.NumBlocks() {
		it.blockIdx = blockIdx
		it.blockIter = nil
		return nil
	}
	block, err := it.table.ReadBlock(blockIdx)
	if err != nil {
		return err
	}
	bi := NewBlockIterator(block)
	if key == nil {
		bi.SeekToFirst()
	} else {
		bi.SeekToKey(key)
	}
	it.blockIdx = blockIdx
	it.blockIter = bi
	return nil
}

// SeekToKey repositions the iterator at the first entry whose key is
// >= key. If the target block's seek lands past its last entry, the
// iterator advances to the next block's first entry, since the
// in-block seek only guarantees correctness within that one block.
func (it *SstIterator) SeekToKey(key []byte) error {
	blockIdx := it.table.FindBlockIdx(key)
	if err := it.seekToBlock(blockIdx, key); err != nil {
		return err
	}
	if it.blockIter != nil && !it.blockIter.IsValid() {
		return it.seekToBlock(blockIdx+1, nil)
	}
	return nil
}

// Key returns the current entry's key.
func (it *SstIterator) Key() []byte { return it.blockIter.Key() }

// Value returns the current entry's value.
func (it *SstIterator) Value() []byte { return it.blockIter.Value() }

// IsValid reports whether the iterator is positioned at an entry.
func (it *SstIterator) IsValid() bool {
	return it.blockIter != nil && it.blockIter.IsValid()
}

// Next advances to the following entry, crossing into the next block
// when the current block is exhausted.
func (it *SstIterator) Next() error {
	it.blockIter.Next()
	if it.blockIter.IsValid() {
		return nil
	}
	return it.seekToBlock(it.blockIdx+1, nil)
}
