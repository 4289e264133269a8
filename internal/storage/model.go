package storage

import (
	"sync/atomic"

	"github.com/nilotpal-labs/kvs/pkg/options"
	"go.uber.org/zap"
)

// Storage owns the low-level segment file operations the engine composes
// into Set/Get/Remove/compact: naming, discovery, opening for append or
// read, and removing or renaming segments on disk. It holds no notion of
// which segment is "active" — that belongs to the engine, which is the
// only component allowed to decide where the next write goes.
type Storage struct {
	dataDir string             // Directory holding every segment file.
	prefix  string             // Segment filename prefix (e.g. "kvs.data").
	closed  atomic.Bool        // Flag indicating whether storage has been closed.
	options *options.Options   // Configuration parameters controlling storage behavior.
	log     *zap.SugaredLogger // Structured logger for operational visibility and debugging.
}

// Config encapsulates all the configuration parameters required to initialize a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
