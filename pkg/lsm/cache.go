package lsm

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/dlhxzb/mini-lsm/pkg/metrics"
)

// BlockCache is the collaborator interface the SST read path consults
// before calling ReadBlock. The core treats hits and misses
// identically except for latency -- it never assumes a particular
// eviction policy.
type BlockCache interface {
	Get(sstID uint32, blockIdx int) (*Block, bool)
	Put(sstID uint32, blockIdx int, block *Block)
}

type blockCacheKey struct {
	sstID    uint32
	blockIdx int
}

type cacheEntry struct {
	key   blockCacheKey
	block *Block
}

// LRUBlockCache is the default BlockCache: an LRU keyed by
// (sst_id, block_idx), adapted from the teacher's own
// pkg/lsm/cache.go BlockCache.
type LRUBlockCache struct {
	mu       sync.Mutex
	capacity int
	index    map[blockCacheKey]*list.Element
	order    *list.List

	hits   int64
	misses int64
}

// NewLRUBlockCache creates a cache holding at most capacity blocks.
func NewLRUBlockCache(capacity int) *LRUBlockCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUBlockCache{
		capacity: capacity,
		index:    make(map[blockCacheKey]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached block for (sstID, blockIdx), if present,
// and marks it most recently used.
func (c *LRUBlockCache) Get(sstID uint32, blockIdx int) (*Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := blockCacheKey{sstID, blockIdx}
	elem, ok := c.index[key]
	if !ok {
		c.misses++
		metrics.DefaultRegistry().RecordBlockCacheAccess(false)
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	metrics.DefaultRegistry().RecordBlockCacheAccess(true)
	return elem.Value.(*cacheEntry).block, true
}

// Put inserts block under (sstID, blockIdx), evicting the least
// recently used entry if the cache is at capacity.
func (c *LRUBlockCache) Put(sstID uint32, blockIdx int, block *Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := blockCacheKey{sstID, blockIdx}
	if elem, ok := c.index[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).block = block
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, block: block})
	c.index[key] = elem

	if c.order.Len() > c.capacity {
		back := c.order.Back()
		if back != nil {
			c.order.Remove(back)
			delete(c.index, back.Value.(*cacheEntry).key)
		}
	}
}

// Stats returns the running hit/miss counters.
func (c *LRUBlockCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *LRUBlockCache) String() string {
	hits, misses := c.Stats()
	return fmt.Sprintf("LRUBlockCache(cap=%d, hits=%d, misses=%d)", c.capacity, hits, misses)
}
