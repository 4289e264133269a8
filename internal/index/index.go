// Package index provides the in-memory hash table implementation for the
// key-value store. This package embodies the core Bitcask architectural
// principle: maintain all keys in memory with minimal metadata while
// storing actual values on disk for optimal memory utilization.
//
// The index enables O(1) key lookups through an in-memory hash table while
// keeping storage overhead minimal. This allows the system to handle
// datasets significantly larger than available RAM while maintaining
// excellent read performance characteristics.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/nilotpal-labs/kvs/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new Index instance configured according to the
// provided parameters. The returned Index is immediately ready for concurrent
// use and includes optimizations like pre-allocated map capacity.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:      config.Logger,
		dataDir:  config.DataDir,
		pointers: make(map[string]*Pointer, 2046),
	}, nil
}

// Insert records (or overwrites) the disk location of key. The caller must
// already hold whatever lock serializes index mutation against concurrent
// readers; Index itself only protects its own map.
func (idx *Index) Insert(key string, ptr Pointer) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pointers[key] = &ptr
}

// Remove deletes key's entry from the index. It reports ok=false if the key
// had no live entry.
func (idx *Index) Remove(key string) (ok bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, found := idx.pointers[key]; !found {
		return false
	}

	delete(idx.pointers, key)
	return true
}

// Get returns the current disk location of key, if any.
func (idx *Index) Get(key string) (Pointer, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ptr, found := idx.pointers[key]
	if !found {
		return Pointer{}, false
	}
	return *ptr, true
}

// Len reports the number of live keys currently tracked by the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.pointers)
}

// Range calls fn once per live (key, pointer) pair. Iteration stops early if
// fn returns false. Range is used by compaction to rebuild the index from
// scratch, so fn must not attempt to mutate this Index.
func (idx *Index) Range(fn func(key string, ptr Pointer) bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for key, ptr := range idx.pointers {
		if !fn(key, *ptr) {
			return
		}
	}
}

// Replace atomically swaps the entire contents of the index for a freshly
// rebuilt set of pointers, used by compaction once the new index has been
// fully constructed and the old segments are ready to be discarded.
func (idx *Index) Replace(pointers map[string]*Pointer) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pointers = pointers
}

// Close gracefully shuts down the Index, cleaning up resources and ensuring
// that the index cannot be used after closure.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing index")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.pointers)
	idx.pointers = nil

	idx.log.Infow("index closed")
	return nil
}
