package lsm

import "bytes"

// LsmIterator wraps a merged StorageIterator with the two concerns the
// storage engine adds on top of raw merging: tombstones (empty
// values) are skipped rather than surfaced, and iteration stops at an
// upper bound instead of running to the end of the underlying stream.
type LsmIterator struct {
	inner StorageIterator
	upper Bound
	err   error
}

// NewLsmIterator wraps inner, enforcing upper and skipping tombstones.
// inner must already be positioned at its first candidate entry.
func NewLsmIterator(inner StorageIterator, upper Bound) (*LsmIterator, error) {
	it := &LsmIterator{inner: inner, upper: upper}
	if err := it.skipDeletedAndOutOfRange(); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *LsmIterator) pastUpper() bool {
	if !it.inner.IsValid() {
		return true
	}
	switch it.upper.Kind {
	case Included:
		return bytes.Compare(it.inner.Key(), it.upper.Key) > 0
	case Excluded:
		return bytes.Compare(it.inner.Key(), it.upper.Key) >= 0
	default:
		return false
	}
}

func (it *LsmIterator) skipDeletedAndOutOfRange() error {
	for it.inner.IsValid() && !it.pastUpper() && len(it.inner.Value()) == 0 {
		if err := it.inner.Next(); err != nil {
			it.err = err
			return err
		}
	}
	if it.pastUpper() {
		it.inner = exhaustedIterator{}
	}
	return nil
}

// IsValid reports whether the cursor sits on a live (non-tombstone,
// in-range) entry.
func (it *LsmIterator) IsValid() bool { return it.inner.IsValid() }

// Key returns the current entry's key.
func (it *LsmIterator) Key() []byte { return it.inner.Key() }

// Value returns the current entry's value.
func (it *LsmIterator) Value() []byte { return it.inner.Value() }

// Next advances to the next live, in-range entry.
func (it *LsmIterator) Next() error {
	if err := it.inner.Next(); err != nil {
		it.err = err
		return err
	}
	return it.skipDeletedAndOutOfRange()
}

// Err returns the error, if any, raised while advancing the
// underlying stream.
func (it *LsmIterator) Err() error { return it.err }

// exhaustedIterator is the permanently-invalid StorageIterator used
// once an LsmIterator passes its upper bound.
type exhaustedIterator struct{}

func (exhaustedIterator) Key() []byte    { return nil }
func (exhaustedIterator) Value() []byte  { return nil }
func (exhaustedIterator) IsValid() bool  { return false }
func (exhaustedIterator) Next() error    { return nil }
