// Package storage provides the file-based primitives the storage engine
// composes into its append-only log: creating the store directory,
// discovering which segment ids exist on disk, opening a segment for
// appending or for read-only access, and removing or renaming segments
// during compaction.
//
// Storage deliberately holds no notion of an "active" segment — that
// decision belongs entirely to the engine, which serializes it under its
// own lock. Every method here operates on a segment id the caller already
// chose.
package storage

import (
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/nilotpal-labs/kvs/pkg/errors"
	"github.com/nilotpal-labs/kvs/pkg/filesys"
	"github.com/nilotpal-labs/kvs/pkg/seginfo"
)

var (
	ErrStorageClosed = stdErrors.New("operation failed: cannot access closed storage")
)

// New creates the store directory if necessary and returns a Storage ready
// to discover and open segment files within it.
func New(config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "storage configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	config.Logger.Infow(
		"initializing storage",
		"dataDir", config.Options.DataDir,
		"maxSegmentSize", config.Options.SegmentOptions.Size,
		"segmentPrefix", config.Options.SegmentOptions.Prefix,
	)

	if err := filesys.CreateDir(config.Options.DataDir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, config.Options.DataDir)
	}

	return &Storage{
		log:     config.Logger,
		options: config.Options,
		dataDir: config.Options.DataDir,
		prefix:  config.Options.SegmentOptions.Prefix,
	}, nil
}

// ListSegmentIDs returns every segment id present on disk, sorted ascending.
// An empty slice means the store directory is empty — the bootstrap case.
func (s *Storage) ListSegmentIDs() ([]uint64, error) {
	ids, err := seginfo.ListSegmentIDs(s.dataDir, s.prefix)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list segment files").
			WithPath(s.dataDir)
	}
	return ids, nil
}

// PathFor returns the absolute path of the segment file for id.
func (s *Storage) PathFor(id uint64) string {
	return filepath.Join(s.dataDir, seginfo.GenerateName(id, s.prefix))
}

// OpenForAppend opens (creating if necessary) the segment file for id in
// append mode and returns both the handle and its current size, so the
// caller knows the byte offset the next write will land at.
func (s *Storage) OpenForAppend(id uint64) (*os.File, int64, error) {
	path := s.PathFor(id)
	filename := filepath.Base(path)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, errors.ClassifyFileOpenError(err, path, filename)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to end of segment file").
			WithFileName(filename).
			WithPath(path)
	}

	return file, offset, nil
}

// OpenForRead opens a segment file (sealed or active) read-only. The caller is
// responsible for closing it once the read completes.
func (s *Storage) OpenForRead(id uint64) (*os.File, error) {
	path := s.PathFor(id)
	filename := filepath.Base(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filename).(*errors.StorageError).
			WithSegmentID(id)
	}

	return file, nil
}

// RemoveSegment deletes the segment file for id.
func (s *Storage) RemoveSegment(id uint64) error {
	path := s.PathFor(id)
	if err := filesys.DeleteFile(path); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to remove segment file").
			WithPath(path).
			WithSegmentID(id)
	}
	return nil
}

// RenameSegment renames the segment file for fromID to the filename for
// toID, used by compaction to collapse the rebuilt log down to segment 0.
func (s *Storage) RenameSegment(fromID, toID uint64) error {
	oldPath := s.PathFor(fromID)
	newPath := s.PathFor(toID)

	if err := os.Rename(oldPath, newPath); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to rename segment file").
			WithPath(oldPath).
			WithSegmentID(fromID).
			WithDetail("newPath", newPath)
	}

	return nil
}

// SegmentSize stats the segment file for id and returns its size in bytes.
func (s *Storage) SegmentSize(id uint64) (int64, error) {
	path := s.PathFor(id)
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat segment file").
			WithPath(path).
			WithSegmentID(id)
	}
	return info.Size(), nil
}

// SegmentSizeThreshold returns the configured rollover threshold in bytes.
func (s *Storage) SegmentSizeThreshold() uint64 {
	return s.options.SegmentOptions.Size
}

// CompactionRatio returns the configured compaction trigger ratio.
func (s *Storage) CompactionRatio() uint64 {
	return s.options.SegmentOptions.CompactionRatio
}

// Close marks the storage as closed. Storage holds no open file handles of
// its own (the engine owns the active writer), so there is nothing else to
// release here.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStorageClosed
	}
	return nil
}
