package lsm

// Options configures an LsmStorage instance and the collaborators its
// layers consume. All fields have safe zero-value-adjacent defaults
// applied by DefaultOptions.
type Options struct {
	// BlockSize is the soft byte cap a BlockBuilder targets per block.
	BlockSize int

	// MemTableSizeLimit is the approximate byte size at which the active
	// memtable is considered full and a sync should be triggered by the
	// caller (the core does not run a background flush loop itself).
	MemTableSizeLimit int

	// BlockCacheCapacity is the number of decoded blocks the shared
	// BlockCache may hold across all SSTs.
	BlockCacheCapacity int

	// EnableCompression selects the Snappy-backed Compressor for new
	// blocks; when false, blocks are stored uncompressed.
	EnableCompression bool

	// BloomBitsPerKey configures the default BloomFilter; 0 disables
	// bloom filters entirely (every probe falls through to disk).
	BloomBitsPerKey uint

	// FileObjectFactory creates the FileObject backing a new SST. Nil
	// selects the default os.File-backed implementation.
	FileObjectFactory FileObjectFactory
}

// DefaultOptions returns the configuration used when a caller does not
// supply one explicitly.
func DefaultOptions() Options {
	return Options{
		BlockSize:          4096,
		MemTableSizeLimit:  4 * 1024 * 1024,
		BlockCacheCapacity: 4096,
		EnableCompression:  false,
		BloomBitsPerKey:    10,
	}
}

func (o Options) withDefaults() Options {
	out := o
	if out.BlockSize <= 0 {
		out.BlockSize = DefaultOptions().BlockSize
	}
	if out.MemTableSizeLimit <= 0 {
		out.MemTableSizeLimit = DefaultOptions().MemTableSizeLimit
	}
	if out.BlockCacheCapacity <= 0 {
		out.BlockCacheCapacity = DefaultOptions().BlockCacheCapacity
	}
	return out
}
