package lsm

import "fmt"

// PreconditionError signals a caller contract violation: an empty key, an
// empty value on Put, or building a Block with no entries. These are
// programmer errors and are never retried.
type PreconditionError struct {
	Op  string
	Msg string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("lsm: precondition violated in %s: %s", e.Op, e.Msg)
}

func newPreconditionError(op, msg string) error {
	return &PreconditionError{Op: op, Msg: msg}
}

// CorruptionError signals a structural invariant breach discovered while
// decoding a Block, an SST's meta region, or its bloom filter section.
type CorruptionError struct {
	Op      string
	Detail  string
	SSTID   uint32
	HasSST  bool
}

func (e *CorruptionError) Error() string {
	if e.HasSST {
		return fmt.Sprintf("lsm: corrupt data in %s (sst %05d): %s", e.Op, e.SSTID, e.Detail)
	}
	return fmt.Sprintf("lsm: corrupt data in %s: %s", e.Op, e.Detail)
}

func newCorruptionError(op, detail string) error {
	return &CorruptionError{Op: op, Detail: detail}
}

func newSSTCorruptionError(op string, sstID uint32, detail string) error {
	return &CorruptionError{Op: op, Detail: detail, SSTID: sstID, HasSST: true}
}
