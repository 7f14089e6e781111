package lsm

import (
	"bytes"
	"container/heap"
)

// MergeIterator merges any number of StorageIterators into one
// key-ordered stream. When two children share a key, the child with
// the lowest construction index wins and the others are silently
// advanced past it, so earlier iterators in the slice shadow later
// ones -- callers order inputs from newest to oldest.
type MergeIterator struct {
	heap mergeHeap
	err  error
}

type mergeItem struct {
	it    StorageIterator
	index int
}

type mergeHeap []*mergeItem

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	c := bytes.Compare(h[i].it.Key(), h[j].it.Key())
	if c != 0 {
		return c < 0
	}
	return h[i].index < h[j].index
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(*mergeItem)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NewMergeIterator builds a MergeIterator from iters, ordered so that
// iters[0] shadows iters[1], which shadows iters[2], and so on.
func NewMergeIterator(iters []StorageIterator) (*MergeIterator, error) {
	m := &MergeIterator{}
	for i, it := range iters {
		if it == nil || !it.IsValid() {
			continue
		}
		m.heap = append(m.heap, &mergeItem{it: it, index: i})
	}
	heap.Init(&m.heap)
	return m, nil
}

// IsValid reports whether any child iterator still holds an entry.
func (m *MergeIterator) IsValid() bool { return m.heap.Len() > 0 }

// Key returns the least key among all child iterators.
func (m *MergeIterator) Key() []byte {
	if !m.IsValid() {
		return nil
	}
	return m.heap[0].it.Key()
}

// Value returns the value paired with Key, from whichever iterator
// holds shadowing priority for that key.
func (m *MergeIterator) Value() []byte {
	if !m.IsValid() {
		return nil
	}
	return m.heap[0].it.Value()
}

// Next advances past the current key on every child iterator that
// currently holds it, discarding shadowed duplicates, then restores
// the heap invariant.
func (m *MergeIterator) Next() error {
	if !m.IsValid() {
		return nil
	}
	key := append([]byte(nil), m.Key()...)

	for m.heap.Len() > 0 && bytes.Equal(m.heap[0].it.Key(), key) {
		top := m.heap[0]
		if err := top.it.Next(); err != nil {
			m.err = err
			return err
		}
		if top.it.IsValid() {
			heap.Fix(&m.heap, 0)
		} else {
			heap.Pop(&m.heap)
		}
	}
	return nil
}

// Err returns the first error encountered while advancing a child
// iterator, or nil.
func (m *MergeIterator) Err() error { return m.err }
