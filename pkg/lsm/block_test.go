package lsm

import (
	"testing"
)

func TestBlockRoundTrip(t *testing.T) {
	bb := NewBlockBuilder(4096)
	if !bb.Add([]byte("11"), []byte("11")) {
		t.Fatal("Add(11,11) should succeed on an empty block")
	}
	if !bb.Add([]byte("22"), []byte("22")) {
		t.Fatal("Add(22,22) should succeed")
	}

	block := bb.Build()
	encoded := block.Encode(NoCompression)
	decoded, err := DecodeBlock(encoded, NoCompression)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}

	it := NewBlockIterator(decoded)
	it.SeekToFirst()

	if !it.IsValid() || string(it.Key()) != "11" || string(it.Value()) != "11" {
		t.Fatalf("first entry = (%s,%s), want (11,11)", it.Key(), it.Value())
	}
	it.Next()
	if !it.IsValid() || string(it.Key()) != "22" || string(it.Value()) != "22" {
		t.Fatalf("second entry = (%s,%s), want (22,22)", it.Key(), it.Value())
	}
	it.Next()
	if it.IsValid() {
		t.Fatal("iterator should be invalid after the last entry")
	}
}

func TestBlockSeekToKey(t *testing.T) {
	bb := NewBlockBuilder(65536)
	keys := []string{"11", "22", "33", "44", "55", "66", "77", "88", "99"}
	for _, k := range keys {
		if !bb.Add([]byte(k), []byte(k)) {
			t.Fatalf("Add(%s) unexpectedly refused", k)
		}
	}
	block := bb.Build()
	it := NewBlockIterator(block)

	it.SeekToKey([]byte("05"))
	if !it.IsValid() || string(it.Key()) != "11" {
		t.Fatalf("seek(05) landed on %q, want 11", it.Key())
	}

	it.SeekToKey([]byte("55"))
	if !it.IsValid() || string(it.Key()) != "55" {
		t.Fatalf("seek(55) landed on %q, want 55", it.Key())
	}

	it.SeekToKey([]byte("99"))
	if !it.IsValid() || string(it.Key()) != "99" {
		t.Fatalf("seek(99) landed on %q, want 99", it.Key())
	}

	it.SeekToKey([]byte("AA"))
	if it.IsValid() {
		t.Fatalf("seek(AA) should be invalid, landed on %q", it.Key())
	}
}

func TestBlockBuilderRefusesOversizedBlock(t *testing.T) {
	bb := NewBlockBuilder(24)
	if !bb.Add([]byte("key1"), []byte("value1")) {
		t.Fatal("first Add into an empty block must always succeed")
	}
	if bb.Add([]byte("key2"), []byte("value2")) {
		t.Fatal("second Add should have been refused once block_size is exceeded")
	}
}

func TestBlockBuilderEmptyEntryAlwaysAdmitted(t *testing.T) {
	bb := NewBlockBuilder(1)
	if !bb.Add([]byte("k"), []byte("v")) {
		t.Fatal("an empty block must always admit its first entry regardless of size")
	}
}

func TestDecodeBlockCorruption(t *testing.T) {
	_, err := DecodeBlock([]byte{0x01}, NoCompression)
	if err == nil {
		t.Fatal("expected a CorruptionError decoding a truncated block")
	}
	var ce *CorruptionError
	if !isCorruptionError(err, &ce) {
		t.Fatalf("expected *CorruptionError, got %T", err)
	}
}

func isCorruptionError(err error, target **CorruptionError) bool {
	ce, ok := err.(*CorruptionError)
	if !ok {
		return false
	}
	*target = ce
	return true
}
