package engine

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/nilotpal-labs/kvs/internal/command"
	"github.com/nilotpal-labs/kvs/internal/framing"
	"github.com/nilotpal-labs/kvs/internal/index"
	"github.com/nilotpal-labs/kvs/pkg/errors"
)

// replaySegment rebuilds index entries from a single segment file, in the
// order its records were written. A decode failure at end-of-file is
// tolerated only on the most recent segment (tolerateTrailingPartial),
// modeling a crash that left a torn write at the tail of the active
// segment; the same failure anywhere else in the log is treated as
// corruption and aborts startup.
func (e *Engine) replaySegment(id uint64, tolerateTrailingPartial bool) error {
	file, err := e.storage.OpenForRead(id)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var offset int64

	for {
		raw, err := reader.ReadBytes(framing.Delimiter)
		if err != nil {
			if err == io.EOF {
				if len(raw) == 0 {
					return nil
				}
				if tolerateTrailingPartial {
					e.log.Warnw(
						"ignoring partial trailing record left by a crash mid-append",
						"segmentID", id, "offset", offset, "danglingBytes", len(raw),
					)
					return nil
				}
				return errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "sealed segment ends with a partial record").
					WithSegmentID(id).
					WithOffset(offset)
			}
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read segment during replay").
				WithSegmentID(id).
				WithOffset(offset)
		}

		var cmd command.Command
		if err := json.Unmarshal(raw[:len(raw)-1], &cmd); err != nil {
			if _, peekErr := reader.Peek(1); tolerateTrailingPartial && peekErr == io.EOF {
				e.log.Warnw(
					"ignoring malformed trailing record left by a crash mid-append",
					"segmentID", id, "offset", offset,
				)
				return nil
			}
			return errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "sealed segment contains a malformed record").
				WithSegmentID(id).
				WithOffset(offset)
		}

		switch cmd.Kind {
		case command.KindSet:
			e.index.Insert(cmd.Key, index.Pointer{SegmentID: id, Offset: uint64(offset)})
		case command.KindRm:
			e.index.Remove(cmd.Key)
		}

		offset += int64(len(raw))
	}
}
