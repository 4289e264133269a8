// Package seginfo provides utilities for naming and discovering the log
// segment files that make up a store's data directory.
//
// Filename format: prefix.N
//
// Where:
//   - prefix: A configurable string identifying the store's segment files
//     (e.g., "kvs.data").
//   - N: A non-negative, non-padded decimal segment id, assigned in the
//     order segments were created. Ids are contiguous from 0 to the active
//     segment's id; compaction renumbers everything back down to a single
//     segment, id 0.
//
// Example filenames:
//
//	kvs.data.0
//	kvs.data.1
//	kvs.data.42
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/nilotpal-labs/kvs/pkg/filesys"
)

// GenerateName creates the filename for the segment identified by id.
func GenerateName(id uint64, prefix string) string {
	return fmt.Sprintf("%s.%d", prefix, id)
}

// ParseSegmentID extracts the segment id from a segment filename or full path.
func ParseSegmentID(fullPath, prefix string) (uint64, error) {
	_, filename := filepath.Split(fullPath)

	want := prefix + "."
	if !strings.HasPrefix(filename, want) {
		return 0, fmt.Errorf("filename %s does not start with expected prefix %s", filename, want)
	}

	idStr := strings.TrimPrefix(filename, want)
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse segment ID %q as integer: %w", idStr, err)
	}

	return id, nil
}

// ListSegmentIDs returns every segment id present in dataDir for the given
// prefix, sorted ascending. An empty slice (not an error) is returned when
// the store directory holds no segments yet — the bootstrap case.
func ListSegmentIDs(dataDir, prefix string) ([]uint64, error) {
	searchPattern := filepath.Join(dataDir, prefix+".*")

	matches, err := filesys.ReadDir(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to read segment directory with pattern %s: %w", searchPattern, err)
	}

	ids := make([]uint64, 0, len(matches))
	for _, match := range matches {
		id, err := ParseSegmentID(match, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to parse segment file %s: %w", match, err)
		}
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids, nil
}

// GetFileInfo safely retrieves file system metadata for a given path.
func GetFileInfo(filePath string) (os.FileInfo, error) {
	file, err := os.OpenFile(filePath, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", filePath, err)
	}

	return stat, nil
}
