package lsm

import "testing"

func mtIter(entries ...[2]string) *MemTableIterator {
	var keys, values [][]byte
	for _, e := range entries {
		keys = append(keys, []byte(e[0]))
		values = append(values, []byte(e[1]))
	}
	return newMemTableIterator(keys, values)
}

func drain(it StorageIterator) [][2]string {
	var out [][2]string
	for it.IsValid() {
		out = append(out, [2]string{string(it.Key()), string(it.Value())})
		it.Next()
	}
	return out
}

func TestMergeIteratorOrdersAcrossChildren(t *testing.T) {
	a := mtIter([2]string{"a", "1"}, [2]string{"c", "3"})
	b := mtIter([2]string{"b", "2"}, [2]string{"d", "4"})

	m, err := NewMergeIterator([]StorageIterator{a, b})
	if err != nil {
		t.Fatalf("NewMergeIterator: %v", err)
	}
	got := drain(m)
	want := [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMergeIteratorEarlierShadowsLater(t *testing.T) {
	newer := mtIter([2]string{"k", "new"})
	older := mtIter([2]string{"k", "old"})

	m, err := NewMergeIterator([]StorageIterator{newer, older})
	if err != nil {
		t.Fatalf("NewMergeIterator: %v", err)
	}
	if !m.IsValid() || string(m.Value()) != "new" {
		t.Fatalf("Value() = %q, want new (index 0 should shadow index 1)", m.Value())
	}
	m.Next()
	if m.IsValid() {
		t.Fatal("the shadowed duplicate from the older iterator should be dropped, not re-surfaced")
	}
}

func TestMergeIteratorEmptyInputs(t *testing.T) {
	m, err := NewMergeIterator(nil)
	if err != nil {
		t.Fatalf("NewMergeIterator: %v", err)
	}
	if m.IsValid() {
		t.Fatal("merging zero iterators should be immediately invalid")
	}
}

func TestTwoMergeIteratorAShadowsB(t *testing.T) {
	a := mtIter([2]string{"k1", "a-val"}, [2]string{"k3", "a-val3"})
	b := mtIter([2]string{"k1", "b-val"}, [2]string{"k2", "b-val2"})

	m, err := NewTwoMergeIterator(a, b)
	if err != nil {
		t.Fatalf("NewTwoMergeIterator: %v", err)
	}
	got := drain(m)
	want := [][2]string{{"k1", "a-val"}, {"k2", "b-val2"}, {"k3", "a-val3"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTwoMergeIteratorOneExhausted(t *testing.T) {
	a := mtIter()
	b := mtIter([2]string{"only", "b"})

	m, err := NewTwoMergeIterator(a, b)
	if err != nil {
		t.Fatalf("NewTwoMergeIterator: %v", err)
	}
	if !m.IsValid() || string(m.Key()) != "only" {
		t.Fatalf("Key() = %q, want only", m.Key())
	}
}
