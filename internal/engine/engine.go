// Package engine implements the log-structured storage engine at the heart
// of the store: an append-only segment log, an in-memory index rebuilt by
// replay on startup, and online compaction that reclaims dead records
// without taking the store offline.
//
// A single RWMutex serializes every Set, Remove, and compaction pass
// against each other and against Get; Get holds the lock in shared mode
// across its entire read, including the segment file access, trading read
// concurrency during compaction for the simplicity of never observing a
// segment file disappear mid-read.
package engine

import (
	"bufio"
	"context"
	stdErrors "errors"
	"io"

	"github.com/nilotpal-labs/kvs/internal/command"
	"github.com/nilotpal-labs/kvs/internal/framing"
	"github.com/nilotpal-labs/kvs/internal/index"
	"github.com/nilotpal-labs/kvs/internal/storage"
	"github.com/nilotpal-labs/kvs/pkg/errors"
	"go.uber.org/multierr"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")
)

// Open initializes a new Engine instance: it prepares the storage directory,
// discovers every existing segment, replays them in ascending order to
// rebuild the index, and opens the most recent segment for further appends.
func Open(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	store, err := storage.New(&storage.Config{Options: config.Options, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	idx, err := index.New(ctx, &index.Config{DataDir: config.Options.DataDir, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:    config.Options,
		log:     config.Logger,
		index:   idx,
		storage: store,
	}

	ids, err := store.ListSegmentIDs()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		e.activeID = 0
	} else {
		for i, id := range ids {
			isLast := i == len(ids)-1
			if err := e.replaySegment(id, isLast); err != nil {
				return nil, err
			}
		}
		e.activeID = ids[len(ids)-1]
	}

	config.Logger.Infow("replay complete", "activeSegmentID", e.activeID, "liveKeys", e.index.Len())

	if err := e.openActiveForAppend(e.activeID); err != nil {
		return nil, err
	}

	return e, nil
}

// openActiveForAppend opens id for append and installs it as the engine's
// active segment, replacing whatever bufio.Writer was previously wrapping
// the old active file (if any — the caller is responsible for flushing and
// closing the old file first).
func (e *Engine) openActiveForAppend(id uint64) error {
	file, offset, err := e.storage.OpenForAppend(id)
	if err != nil {
		return err
	}

	e.activeID = id
	e.activeFile = file
	e.activeWriter = bufio.NewWriter(file)
	e.activeOffset = offset
	return nil
}

// appendLocked writes cmd to the active segment, flushes the writer's
// user-space buffer so a subsequent read through a separate file handle
// sees the bytes, and returns the offset the record was written at. The
// caller must hold mu for writing.
func (e *Engine) appendLocked(cmd command.Command) (int64, error) {
	offset := e.activeOffset

	n, err := framing.Write(e.activeWriter, cmd)
	if err != nil {
		return 0, err
	}

	if err := e.activeWriter.Flush(); err != nil {
		return 0, errors.ClassifySyncError(err, e.activeFile.Name(), e.activeFile.Name(), offset)
	}

	e.activeOffset += int64(n)
	return offset, nil
}

// readRecord opens segmentID for read independently of the active writer
// and decodes the single record starting at offset. It works the same way
// whether segmentID is sealed or currently active, because appendLocked
// always flushes before returning, so an independent file handle sees every
// byte the index could possibly point at.
func (e *Engine) readRecord(segmentID uint64, offset uint64) (command.Command, error) {
	var zero command.Command

	file, err := e.storage.OpenForRead(segmentID)
	if err != nil {
		return zero, err
	}
	defer file.Close()

	if _, err := file.Seek(int64(offset), io.SeekStart); err != nil {
		return zero, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to record offset").
			WithSegmentID(segmentID).
			WithOffset(int64(offset))
	}

	reader := bufio.NewReader(file)
	cmd, err := framing.Read[command.Command](reader)
	if err != nil {
		return zero, err
	}

	return cmd, nil
}

// Set stores value under key, appending a record to the active segment and
// then checking whether that append should trigger a rollover or compaction.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	offset, err := e.appendLocked(command.Set(key, value))
	if err != nil {
		return err
	}

	e.index.Insert(key, index.Pointer{SegmentID: e.activeID, Offset: uint64(offset)})

	return e.tryCompactLocked(offset)
}

// Get returns the current value of key and whether it has a live entry.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	ptr, found := e.index.Get(key)
	if !found {
		return "", false, nil
	}

	cmd, err := e.readRecord(ptr.SegmentID, ptr.Offset)
	if err != nil {
		return "", false, err
	}

	if cmd.Kind != command.KindSet {
		return "", false, errors.NewLogMismatchError(key, ptr.SegmentID)
	}

	return cmd.Value, true, nil
}

// Remove deletes key, failing with errors.NewKeyNotFoundError if it has no
// live entry.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, found := e.index.Get(key); !found {
		return errors.NewKeyNotFoundError(key)
	}

	offset, err := e.appendLocked(command.Rm(key))
	if err != nil {
		return err
	}

	e.index.Remove(key)

	return e.tryCompactLocked(offset)
}

// Close flushes and closes the active segment, then shuts down the index
// and storage subsystems, combining every failure into a single error.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	err = multierr.Append(err, e.activeWriter.Flush())
	err = multierr.Append(err, e.activeFile.Close())
	err = multierr.Append(err, e.index.Close())
	err = multierr.Append(err, e.storage.Close())
	return err
}
