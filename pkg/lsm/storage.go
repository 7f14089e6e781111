package lsm

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dlhxzb/mini-lsm/pkg/logging"
	"github.com/dlhxzb/mini-lsm/pkg/metrics"
)

// lsmStorageState is the copy-on-write layer set: the active
// memtable, frozen-but-unflushed memtables newest-first, and L0 SSTs
// newest-first. A pointer to one of these is a consistent,
// point-in-time snapshot; readers never observe a half-mutated set.
type lsmStorageState struct {
	memtable     *MemTable
	immMemtables []*MemTable
	l0SSTables   []*SST
	nextSSTID    uint32
}

func (s *lsmStorageState) clone() *lsmStorageState {
	out := &lsmStorageState{
		memtable:  s.memtable,
		nextSSTID: s.nextSSTID,
	}
	out.immMemtables = append([]*MemTable(nil), s.immMemtables...)
	out.l0SSTables = append([]*SST(nil), s.l0SSTables...)
	return out
}

// LsmStorage is the storage coordinator: it owns the layer set and
// the collaborators (block cache, bloom/compression configuration,
// file factory) shared by every SST the engine builds or opens.
type LsmStorage struct {
	path       string
	instanceID string
	options    Options
	cache      BlockCache

	stateMu sync.RWMutex
	state   *lsmStorageState

	syncMu sync.Mutex

	stats storageStats

	logger logging.Logger
}

// InstanceID returns the identifier generated for this instance at
// Open, used to correlate its log lines when several engines run in
// the same process.
func (lsm *LsmStorage) InstanceID() string { return lsm.instanceID }

// Open constructs an empty layer set rooted at path with the given
// Options. A zero BlockSize, MemTableSizeLimit or BlockCacheCapacity
// selects the DefaultOptions value; a zero BloomBitsPerKey disables
// bloom filters.
func Open(ctx context.Context, path string, options Options) (*LsmStorage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := options.withDefaults()
	instanceID := uuid.New().String()

	storage := &LsmStorage{
		path:       path,
		instanceID: instanceID,
		options:    opts,
		cache:      NewLRUBlockCache(opts.BlockCacheCapacity),
		state: &lsmStorageState{
			memtable: NewMemTable(0),
		},
		logger: logging.DefaultLogger().With(logging.Component("lsm"), logging.Path(path), logging.String("instance_id", instanceID)),
	}
	storage.state.nextSSTID = 1
	storage.logger.Info("storage opened", logging.Int("block_size", opts.BlockSize))
	return storage, nil
}

func (lsm *LsmStorage) snapshot() *lsmStorageState {
	lsm.stateMu.RLock()
	defer lsm.stateMu.RUnlock()
	return lsm.state
}

func (lsm *LsmStorage) compressor() Compressor {
	if lsm.options.EnableCompression {
		return SnappyCompression
	}
	return NoCompression
}

// Get returns the value stored for key, probing the active memtable,
// then immutable memtables newest to oldest, then L0 SSTs newest to
// oldest. The first hit wins; a tombstone (empty value) reports
// ok=false.
func (lsm *LsmStorage) Get(key []byte) (value []byte, ok bool, err error) {
	if len(key) == 0 {
		return nil, false, newPreconditionError("LsmStorage.Get", "key must not be empty")
	}
	atomic.AddUint64(&lsm.stats.gets, 1)

	start := time.Now()
	defer func() {
		metrics.DefaultRegistry().RecordOperation("get", operationStatus(ok, err), time.Since(start))
	}()

	state := lsm.snapshot()

	if v, found := state.memtable.Get(key); found {
		return tombstoneResult(v)
	}
	for _, mt := range state.immMemtables {
		if v, found := mt.Get(key); found {
			return tombstoneResult(v)
		}
	}

	for _, sst := range state.l0SSTables {
		if !sst.MayContain(key) {
			continue
		}
		it, err := CreateAndSeekToKey(sst, key)
		if err != nil {
			return nil, false, err
		}
		if it.IsValid() && bytesEqual(it.Key(), key) {
			return tombstoneResult(it.Value())
		}
		// Miss or invalid seek: keep walking older SSTs instead of
		// stopping, since a bloom false positive or a key absent from
		// this SST's range says nothing about the rest of the layer set.
	}

	return nil, false, nil
}

// operationStatus maps a call's outcome to the label metrics records
// it under: "error" on a non-nil error, "not_found" for a clean miss,
// "ok" otherwise.
func operationStatus(found bool, err error) string {
	if err != nil {
		return "error"
	}
	if found {
		return "ok"
	}
	return "not_found"
}

func tombstoneResult(v []byte) ([]byte, bool, error) {
	if len(v) == 0 {
		return nil, false, nil
	}
	return v, true, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Put inserts or overwrites key with value in the active memtable.
//
// The read lock is held for the whole write, not just the memtable
// lookup: Sync takes stateMu.Lock() to freeze the active memtable and
// swap in a new one, and a Put that released the lock after reading
// the pointer could still be scheduled to write into that memtable
// after Sync has already drained and discarded it, losing the write
// silently. Holding the RLock across the call makes the two phases --
// "read which memtable is active" and "write into it" -- atomic with
// respect to a concurrent freeze, the same guarantee the teacher's own
// pkg/lsm/lsm.go Put gets from holding its single mutex across both
// steps.
func (lsm *LsmStorage) Put(key, value []byte) error {
	if len(key) == 0 {
		return newPreconditionError("LsmStorage.Put", "key must not be empty")
	}
	if len(value) == 0 {
		return newPreconditionError("LsmStorage.Put", "value must not be empty")
	}
	lsm.stateMu.RLock()
	defer lsm.stateMu.RUnlock()

	start := time.Now()
	err := lsm.state.memtable.Put(key, value)
	metrics.DefaultRegistry().RecordOperation("put", operationStatus(err == nil, err), time.Since(start))
	atomic.AddUint64(&lsm.stats.puts, 1)
	return err
}

// Delete writes a tombstone for key. See Put for why the read lock
// spans the memtable write instead of just the lookup.
func (lsm *LsmStorage) Delete(key []byte) error {
	if len(key) == 0 {
		return newPreconditionError("LsmStorage.Delete", "key must not be empty")
	}
	lsm.stateMu.RLock()
	defer lsm.stateMu.RUnlock()

	start := time.Now()
	err := lsm.state.memtable.Put(key, nil)
	metrics.DefaultRegistry().RecordOperation("delete", operationStatus(err == nil, err), time.Since(start))
	atomic.AddUint64(&lsm.stats.deletes, 1)
	return err
}

// Sync freezes the active memtable and flushes it to a new L0 SST.
// Only one sync runs at a time; concurrent callers block on the sync
// mutex. ctx is checked between the two write-lock phases but never
// mid-phase.
func (lsm *LsmStorage) Sync(ctx context.Context) error {
	lsm.syncMu.Lock()
	defer lsm.syncMu.Unlock()

	start := time.Now()
	var syncErr error
	defer func() {
		metrics.DefaultRegistry().RecordOperation("sync", operationStatus(syncErr == nil, syncErr), time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		syncErr = err
		return err
	}

	lsm.stateMu.Lock()
	frozen := lsm.state.memtable
	sstID := lsm.state.nextSSTID
	next := lsm.state.clone()
	next.memtable = NewMemTable(sstID)
	next.immMemtables = append([]*MemTable{frozen}, next.immMemtables...)
	lsm.state = next
	lsm.stateMu.Unlock()

	if frozen.Len() == 0 {
		lsm.stateMu.Lock()
		final := lsm.state.clone()
		final.immMemtables = final.immMemtables[1:]
		lsm.state = final
		lsm.stateMu.Unlock()
		return nil
	}

	builder := NewSstBuilder(lsm.options.BlockSize).
		WithCompressor(lsm.compressor()).
		WithBloomFilter(lsm.options.BloomBitsPerKey)
	frozen.Flush(builder)

	sstPath := filepath.Join(lsm.path, fmt.Sprintf("%05d.sst", sstID))
	factory := lsm.options.FileObjectFactory
	sst, err := builder.Build(sstID, lsm.cache, sstPath, factory)
	if err != nil {
		lsm.logger.Error("sync failed to build SST", logging.SSTID(sstID), logging.Error(err))
		syncErr = err
		return err
	}

	if err := ctx.Err(); err != nil {
		syncErr = err
		return err
	}

	lsm.stateMu.Lock()
	final := lsm.state.clone()
	final.immMemtables = removeMemtable(final.immMemtables, frozen)
	final.l0SSTables = append([]*SST{sst}, final.l0SSTables...)
	final.nextSSTID++
	lsm.state = final
	lsm.stateMu.Unlock()

	atomic.AddUint64(&lsm.stats.syncs, 1)
	lsm.logger.Info("sync flushed memtable to SST", logging.SSTID(sstID), logging.Count(sst.NumBlocks()))
	return nil
}

func removeMemtable(list []*MemTable, target *MemTable) []*MemTable {
	out := make([]*MemTable, 0, len(list))
	for _, mt := range list {
		if mt != target {
			out = append(out, mt)
		}
	}
	return out
}

// Scan returns a cursor over [lower, upper], merging every layer with
// newer entries shadowing older ones and skipping tombstones.
func (lsm *LsmStorage) Scan(lower, upper Bound) (result *FusedIterator, err error) {
	atomic.AddUint64(&lsm.stats.scans, 1)
	start := time.Now()
	defer func() {
		metrics.DefaultRegistry().RecordOperation("scan", operationStatus(err == nil, err), time.Since(start))
	}()

	state := lsm.snapshot()

	memIters := make([]StorageIterator, 0, 1+len(state.immMemtables))
	memIters = append(memIters, scanMemtable(state.memtable, lower, upper))
	for _, mt := range state.immMemtables {
		memIters = append(memIters, scanMemtable(mt, lower, upper))
	}
	memMerged, err := NewMergeIterator(memIters)
	if err != nil {
		return nil, err
	}

	sstIters := make([]StorageIterator, 0, len(state.l0SSTables))
	for _, sst := range state.l0SSTables {
		it, err := seekSST(sst, lower)
		if err != nil {
			return nil, err
		}
		sstIters = append(sstIters, it)
	}
	sstMerged, err := NewMergeIterator(sstIters)
	if err != nil {
		return nil, err
	}

	twoMerged, err := NewTwoMergeIterator(memMerged, sstMerged)
	if err != nil {
		return nil, err
	}

	lsmIt, err := NewLsmIterator(twoMerged, upper)
	if err != nil {
		return nil, err
	}
	return NewFusedIterator(lsmIt), nil
}

func scanMemtable(mt *MemTable, lower, upper Bound) StorageIterator {
	return mt.Scan(lower, upper)
}

// seekSST positions an SstIterator according to lower: unbounded or
// Included seeks to the first entry >= key (or the very first entry
// if unbounded); Excluded seeks to key and steps once past an exact
// match, since the in-block seek only guarantees >=.
func seekSST(sst *SST, lower Bound) (StorageIterator, error) {
	if lower.Kind == Unbounded {
		return CreateAndSeekToFirst(sst)
	}
	it, err := CreateAndSeekToKey(sst, lower.Key)
	if err != nil {
		return nil, err
	}
	if lower.Kind == Excluded && it.IsValid() && bytesEqual(it.Key(), lower.Key) {
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return it, nil
}

// Close returns nil without releasing anything. SSTs and memtables
// hold no unmanaged handles beyond their FileObjects; the files that
// the default os-backed implementation keeps open for reads are not
// closed by it.
func (lsm *LsmStorage) Close() error {
	return nil
}

// storageStats holds the atomic operation counters backing Stats.
type storageStats struct {
	gets    uint64
	puts    uint64
	deletes uint64
	syncs   uint64
	scans   uint64
}

// StatsSnapshot is a point-in-time copy of the running operation
// counters.
type StatsSnapshot struct {
	Gets          uint64
	Puts          uint64
	Deletes       uint64
	Syncs         uint64
	Scans         uint64
	MemtableBytes int
	L0SSTables    int
	ImmMemtables  int
}

// Stats returns a snapshot of the engine's running counters and
// current layer-set shape.
func (lsm *LsmStorage) Stats() StatsSnapshot {
	state := lsm.snapshot()
	snap := StatsSnapshot{
		Gets:          atomic.LoadUint64(&lsm.stats.gets),
		Puts:          atomic.LoadUint64(&lsm.stats.puts),
		Deletes:       atomic.LoadUint64(&lsm.stats.deletes),
		Syncs:         atomic.LoadUint64(&lsm.stats.syncs),
		Scans:         atomic.LoadUint64(&lsm.stats.scans),
		MemtableBytes: state.memtable.ApproximateSize(),
		L0SSTables:    len(state.l0SSTables),
		ImmMemtables:  len(state.immMemtables),
	}
	metrics.DefaultRegistry().UpdateLayerMetrics(snap.L0SSTables, snap.ImmMemtables, snap.MemtableBytes)
	return snap
}
