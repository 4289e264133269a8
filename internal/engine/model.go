package engine

import (
	"bufio"
	"os"
	"sync"
	"sync/atomic"

	"github.com/nilotpal-labs/kvs/internal/index"
	"github.com/nilotpal-labs/kvs/internal/storage"
	"github.com/nilotpal-labs/kvs/pkg/options"
	"go.uber.org/zap"
)

// SegmentSizeThreshold-sized rollovers and the compaction heuristic live on
// Storage's configured options; Engine only decides when to invoke them.

// Engine is the storage engine: it owns the in-memory index, the active
// segment writer, and the single lock that serializes every mutation
// against every read and against compaction. See the package doc for the
// concurrency discipline this lock enforces.
type Engine struct {
	opts   *options.Options   // opts contains every configuration parameter for the engine and its subsystems.
	log    *zap.SugaredLogger // log provides structured logging throughout the engine.
	closed atomic.Bool        // closed tracks the engine's lifecycle state.

	mu      sync.RWMutex     // mu guards index, activeID, activeFile, activeWriter, activeOffset.
	index   *index.Index     // index maps live keys to their (segment, offset) location.
	storage *storage.Storage // storage provides the segment file primitives the engine composes.

	activeID     uint64        // activeID is the segment id every Set/Remove currently appends to.
	activeFile   *os.File      // activeFile is the open handle backing activeWriter.
	activeWriter *bufio.Writer // activeWriter buffers appends to the active segment file.
	activeOffset int64         // activeOffset is the byte offset the next append will land at.
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
