package lsm

import (
	"bytes"
	"sort"
)

// BlockIterator is a binary-search cursor over a single Block. An
// invalid cursor is signalled by an empty current key (valid entries
// never carry an empty key).
type BlockIterator struct {
	block *Block
	idx   int
	key   []byte
	value []byte
}

// NewBlockIterator creates a cursor positioned before the first entry;
// call SeekToFirst or SeekToKey before reading.
func NewBlockIterator(block *Block) *BlockIterator {
	return &BlockIterator{block: block}
}

// SeekToFirst positions the cursor at entry 0.
func (it *BlockIterator) SeekToFirst() {
	it.seekTo(0)
}

// Next advances the cursor by one entry.
func (it *BlockIterator) Next() {
	it.seekTo(it.idx + 1)
}

// SeekToKey lands on the least index whose key is >= k via binary
// search over the offsets array. If no such key exists the iterator
// becomes invalid.
func (it *BlockIterator) SeekToKey(k []byte) {
	n := it.block.NumEntries()
	idx := sort.Search(n, func(i int) bool {
		key, _ := it.block.entryAt(it.block.offsets[i])
		return bytes.Compare(key, k) >= 0
	})
	it.seekTo(idx)
}

func (it *BlockIterator) seekTo(idx int) {
	it.idx = idx
	if idx >= it.block.NumEntries() {
		it.key = nil
		it.value = nil
		return
	}
	key, value := it.block.entryAt(it.block.offsets[idx])
	it.key = append([]byte(nil), key...)
	it.value = append([]byte(nil), value...)
}

// Key returns the current entry's key. Undefined if IsValid is false.
func (it *BlockIterator) Key() []byte { return it.key }

// Value returns the current entry's value. Undefined if IsValid is false.
func (it *BlockIterator) Value() []byte { return it.value }

// IsValid reports whether the cursor currently sits on an entry.
func (it *BlockIterator) IsValid() bool { return len(it.key) != 0 }
