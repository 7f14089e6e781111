package lsm

// MemTableIterator walks a point-in-time snapshot of a MemTable's
// entries within a bound, copied out of the skiplist at construction
// time so subsequent writes to the table never disturb an in-flight
// scan. An invalid cursor is signalled by an empty current key.
type MemTableIterator struct {
	keys   [][]byte
	values [][]byte
	idx    int
}

// newMemTableIterator builds a cursor and advances once, per the
// contract that a freshly constructed iterator already exposes its
// first entry (or is immediately invalid if the range is empty).
func newMemTableIterator(keys, values [][]byte) *MemTableIterator {
	it := &MemTableIterator{keys: keys, values: values, idx: -1}
	it.Next()
	return it
}

// Key returns the current entry's key.
func (it *MemTableIterator) Key() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.keys[it.idx]
}

// Value returns the current entry's value (possibly empty: a
// tombstone).
func (it *MemTableIterator) Value() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.values[it.idx]
}

// IsValid reports whether the cursor currently sits on an entry.
func (it *MemTableIterator) IsValid() bool {
	return it.idx >= 0 && it.idx < len(it.keys)
}

// Next advances to the next entry, or becomes invalid at the end.
func (it *MemTableIterator) Next() error {
	it.idx++
	return nil
}
