package lsm

import "bytes"

// MemTable is a concurrent ordered in-memory buffer for fresh writes,
// backed by a skiplist. Deletions are stored literally as empty
// values (tombstones) rather than as a separate marker, so a MemTable
// never needs to distinguish "absent" from "deleted" internally --
// that distinction is the read path's job.
type MemTable struct {
	table *skiplist
	id    uint32
}

// NewMemTable creates an empty, writable memtable tagged with id (the
// id a caller may use to correlate it with the SST it will eventually
// become).
func NewMemTable(id uint32) *MemTable {
	return &MemTable{table: newSkiplist(), id: id}
}

// ID returns the identifier this memtable was created with.
func (mt *MemTable) ID() uint32 { return mt.id }

// Put inserts or overwrites key with value. An empty value is the
// tombstone sentinel.
func (mt *MemTable) Put(key, value []byte) error {
	if len(key) == 0 {
		return newPreconditionError("MemTable.Put", "key must not be empty")
	}
	mt.table.put(key, value)
	return nil
}

// Get returns the stored value for key. A tombstone (empty value) is
// still returned as found=true with an empty slice; callers that care
// about deletion semantics (like LsmStorage.Get) must check len(value).
func (mt *MemTable) Get(key []byte) ([]byte, bool) {
	return mt.table.get(key)
}

// ApproximateSize returns the running byte estimate of stored
// keys+values. The coordinator reports it through Stats; it does not
// trigger a sync on its own.
func (mt *MemTable) ApproximateSize() int {
	return mt.table.approximateSize()
}

// Len returns the number of distinct keys currently stored.
func (mt *MemTable) Len() int {
	return mt.table.len()
}

// Scan returns a cursor over [lower, upper] honouring each Bound's
// kind, initialised so the first matching entry is already exposed.
func (mt *MemTable) Scan(lower, upper Bound) *MemTableIterator {
	var lowerKey []byte
	if lower.Kind != Unbounded {
		lowerKey = lower.Key
	}

	var upperKey []byte
	upperIncl := false
	if upper.Kind == Included {
		upperKey = upper.Key
		upperIncl = true
	} else if upper.Kind == Excluded {
		upperKey = upper.Key
	}

	keys, values := mt.table.snapshotRange(lowerKey, upperKey, upperIncl)
	if lower.Kind == Excluded && len(keys) > 0 && bytes.Equal(keys[0], lower.Key) {
		// snapshotRange treats lower as an inclusive splice point; drop
		// the leading entry if it exactly matches an excluded lower bound.
		keys = keys[1:]
		values = values[1:]
	}

	return newMemTableIterator(keys, values)
}

// Flush repeatedly pops the least entry and feeds it to builder,
// leaving the memtable empty once it returns.
func (mt *MemTable) Flush(builder *SstBuilder) {
	for {
		key, value, ok := mt.table.popFront()
		if !ok {
			break
		}
		builder.Add(key, value)
	}
}
