package lsm

import "testing"

func TestLsmIteratorSkipsTombstones(t *testing.T) {
	inner := mtIter([2]string{"a", "1"}, [2]string{"b", ""}, [2]string{"c", "3"})
	it, err := NewLsmIterator(inner, UnboundedBound())
	if err != nil {
		t.Fatalf("NewLsmIterator: %v", err)
	}
	got := drain(it)
	want := [][2]string{{"a", "1"}, {"c", "3"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v (tombstone for b should be skipped)", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLsmIteratorRespectsUpperBound(t *testing.T) {
	inner := mtIter([2]string{"a", "1"}, [2]string{"b", "2"}, [2]string{"c", "3"})
	it, err := NewLsmIterator(inner, ExcludedBound([]byte("c")))
	if err != nil {
		t.Fatalf("NewLsmIterator: %v", err)
	}
	got := drain(it)
	want := [][2]string{{"a", "1"}, {"b", "2"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLsmIteratorUpperBoundAtFirstEntry(t *testing.T) {
	inner := mtIter([2]string{"a", ""}, [2]string{"b", "2"})
	it, err := NewLsmIterator(inner, IncludedBound([]byte("a")))
	if err != nil {
		t.Fatalf("NewLsmIterator: %v", err)
	}
	if it.IsValid() {
		t.Fatal("a is a tombstone and also the upper bound, so the iterator should be immediately invalid")
	}
}

func TestFusedIteratorNoopsAfterExhaustion(t *testing.T) {
	inner := mtIter([2]string{"a", "1"})
	lsmIt, err := NewLsmIterator(inner, UnboundedBound())
	if err != nil {
		t.Fatalf("NewLsmIterator: %v", err)
	}
	f := NewFusedIterator(lsmIt)

	if !f.IsValid() || string(f.Key()) != "a" {
		t.Fatalf("Key() = %q, want a", f.Key())
	}
	if err := f.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if f.IsValid() {
		t.Fatal("should be invalid after exhausting the only entry")
	}

	for i := 0; i < 3; i++ {
		if err := f.Next(); err != nil {
			t.Fatalf("Next on an exhausted FusedIterator must stay a no-op, got %v", err)
		}
	}
	if f.Key() != nil || f.Value() != nil {
		t.Fatal("Key/Value should be nil once invalid")
	}
}

func TestFusedIteratorEmptyInner(t *testing.T) {
	inner := mtIter()
	lsmIt, err := NewLsmIterator(inner, UnboundedBound())
	if err != nil {
		t.Fatalf("NewLsmIterator: %v", err)
	}
	f := NewFusedIterator(lsmIt)
	if f.IsValid() {
		t.Fatal("fusing an already-empty iterator should be immediately invalid")
	}
}
