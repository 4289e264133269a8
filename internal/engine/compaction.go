package engine

import (
	"github.com/nilotpal-labs/kvs/internal/index"
)

// tryCompactLocked implements the rollover/compaction heuristic: once the
// active segment passes the configured size threshold, roll over to a
// fresh segment, and if the index is still small relative to how many
// segments have ever been created, run a full compaction pass. The ratio
// check is a heuristic carried over unchanged from the source system, not
// a correctness contract — it exists only to bound how often the
// (comparatively expensive) full compaction runs. The caller must hold mu
// for writing.
func (e *Engine) tryCompactLocked(lastOffset int64) error {
	threshold := int64(e.storage.SegmentSizeThreshold())
	if lastOffset <= threshold {
		return nil
	}

	if err := e.rolloverLocked(); err != nil {
		return err
	}

	ratio := e.storage.CompactionRatio()
	if uint64(e.index.Len()) < e.activeID*ratio {
		return e.compactLocked()
	}

	return nil
}

// rolloverLocked flushes and closes the current active segment and opens
// the next one for append. The caller must hold mu for writing.
func (e *Engine) rolloverLocked() error {
	if err := e.activeWriter.Flush(); err != nil {
		return err
	}

	sealedID := e.activeID
	if err := e.activeFile.Close(); err != nil {
		return err
	}

	if size, err := e.storage.SegmentSize(sealedID); err == nil {
		e.log.Debugw("sealed segment", "segmentID", sealedID, "size", size)
	}

	return e.openActiveForAppend(sealedID + 1)
}

// compactLocked rebuilds the index from scratch: every live record still
// sitting in a sealed segment is re-appended to the (already rolled-over)
// active segment, and every record already there keeps its offset. Once
// the rebuilt index is fully populated in memory, every sealed segment is
// removed and the active segment is renamed to id 0 — matching the
// source's invariant that every surviving key ends up pointing at segment
// 0 once compaction finishes. The caller must hold mu for writing.
func (e *Engine) compactLocked() error {
	rebuilt := make(map[string]*index.Pointer)

	var rangeErr error
	e.index.Range(func(key string, ptr index.Pointer) bool {
		if ptr.SegmentID >= e.activeID {
			rebuilt[key] = &index.Pointer{SegmentID: 0, Offset: ptr.Offset}
			return true
		}

		cmd, err := e.readRecord(ptr.SegmentID, ptr.Offset)
		if err != nil {
			rangeErr = err
			return false
		}

		newOffset, err := e.appendLocked(cmd)
		if err != nil {
			rangeErr = err
			return false
		}

		rebuilt[key] = &index.Pointer{SegmentID: 0, Offset: uint64(newOffset)}
		return true
	})
	if rangeErr != nil {
		return rangeErr
	}

	staleID := e.activeID
	for id := uint64(0); id < staleID; id++ {
		if err := e.storage.RemoveSegment(id); err != nil {
			return err
		}
	}

	if err := e.activeWriter.Flush(); err != nil {
		return err
	}
	if err := e.activeFile.Close(); err != nil {
		return err
	}

	if err := e.storage.RenameSegment(staleID, 0); err != nil {
		return err
	}

	if err := e.openActiveForAppend(0); err != nil {
		return err
	}

	e.index.Replace(rebuilt)
	return nil
}
