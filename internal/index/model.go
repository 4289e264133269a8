package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Pointer contains the minimum metadata required to locate a live record on
// disk: which segment holds it, and the byte offset of its first byte
// within that segment. The key is deliberately not duplicated here — every
// caller already holds it as the map key.
type Pointer struct {
	SegmentID uint64
	Offset    uint64
}

// Index represents the in-memory hash table that maps keys to their disk
// locations. It embodies the Bitcask architecture's central tradeoff:
// keep every key resident in memory for O(1) lookup while storing only a
// segment id and an offset per entry, leaving the values themselves on disk.
type Index struct {
	dataDir  string              // Contains the filesystem path where segment files are stored.
	log      *zap.SugaredLogger  // Provides structured logging capabilities.
	pointers map[string]*Pointer // Maintains the core mapping from keys to their disk locations.
	mu       sync.RWMutex        // Protects concurrent access to the pointers map.
	closed   atomic.Bool         // Indicates whether the index has been closed.
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string             // Specifies the filesystem directory containing segment files.
	Logger  *zap.SugaredLogger // Provides structured logging capabilities for Index operations.
}
