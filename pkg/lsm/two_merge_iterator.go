package lsm

import "bytes"

// TwoMergeIterator merges two StorageIterators where, on a shared
// key, iterator A always shadows iterator B. It is used to combine a
// single already-merged stream (memtables, or one level) with another
// without paying for a full heap.
type TwoMergeIterator struct {
	a, b StorageIterator
}

// NewTwoMergeIterator builds a merge of a and b with a taking priority
// on ties.
func NewTwoMergeIterator(a, b StorageIterator) (*TwoMergeIterator, error) {
	m := &TwoMergeIterator{a: a, b: b}
	if err := m.skipB(); err != nil {
		return nil, err
	}
	return m, nil
}

// skipB advances b past any key currently exposed by a, since a
// shadows b on ties.
func (m *TwoMergeIterator) skipB() error {
	for m.a.IsValid() && m.b.IsValid() && bytes.Equal(m.a.Key(), m.b.Key()) {
		if err := m.b.Next(); err != nil {
			return err
		}
	}
	return nil
}

// IsValid reports whether either child iterator still holds an
// entry.
func (m *TwoMergeIterator) IsValid() bool {
	return m.a.IsValid() || m.b.IsValid()
}

// chooseA reports whether the next entry should come from a: a is
// valid and either b is exhausted or a's key sorts before (or ties
// with) b's.
func (m *TwoMergeIterator) chooseA() bool {
	if !m.a.IsValid() {
		return false
	}
	if !m.b.IsValid() {
		return true
	}
	return bytes.Compare(m.a.Key(), m.b.Key()) <= 0
}

// Key returns the least key among the two child iterators.
func (m *TwoMergeIterator) Key() []byte {
	if m.chooseA() {
		return m.a.Key()
	}
	return m.b.Key()
}

// Value returns the value paired with Key.
func (m *TwoMergeIterator) Value() []byte {
	if m.chooseA() {
		return m.a.Value()
	}
	return m.b.Value()
}

// Next advances whichever child supplied the current entry, then
// re-skips b past any new tie with a.
func (m *TwoMergeIterator) Next() error {
	if m.chooseA() {
		if err := m.a.Next(); err != nil {
			return err
		}
	} else {
		if err := m.b.Next(); err != nil {
			return err
		}
	}
	return m.skipB()
}
