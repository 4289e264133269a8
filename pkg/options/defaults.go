package options

const (
	// Specifies the default base directory where the store will keep its
	// segment files. If no other directory is specified during initialization,
	// this path will be used.
	DefaultDataDir = "/var/lib/kvs"

	// Represents the minimum allowed size for a segment file in bytes (64KB).
	MinSegmentSize uint64 = 64 * 1024

	// Represents the maximum allowed size for a segment file in bytes (64MB).
	MaxSegmentSize uint64 = 64 * 1024 * 1024

	// Specifies the default target size for a new segment file in bytes (1MiB),
	// the threshold past which a Set/Remove triggers a rollover to a fresh segment.
	DefaultSegmentSize uint64 = 1 * 1024 * 1024

	// Defines the default prefix for segment file names.
	// A segment file is named "kvs.data.<id>", e.g. "kvs.data.0".
	DefaultSegmentPrefix = "kvs.data"

	// Defines the default ratio used by the compaction heuristic: compaction
	// only runs when the index holds fewer live entries than
	// activeID * DefaultCompactionRatio.
	DefaultCompactionRatio uint64 = 1024
)

// NewDefaultOptions returns a fresh Options value with its own
// SegmentOptions. Each call allocates a new *segmentOptions so that
// applying OptionFunc values (or mutating the result directly, as tests
// do) never leaks across independently-configured Options values.
func NewDefaultOptions() Options {
	return Options{
		DataDir: DefaultDataDir,
		SegmentOptions: &segmentOptions{
			Size:            DefaultSegmentSize,
			Prefix:          DefaultSegmentPrefix,
			CompactionRatio: DefaultCompactionRatio,
		},
	}
}
