// Package options provides data structures and functions for configuring
// the store. It defines the parameters that control storage behavior and
// maintenance operations: where data lives on disk, the rollover threshold
// for segment files, and the compaction trigger heuristic.
package options

import (
	"strings"
)

// Defines configurable parameters for each segment.
// It provides fine-grained control over segment behavior, performance, and resource utilization.
type segmentOptions struct {
	// Defines the size a segment can grow to before rollover.
	// When the active segment's write offset exceeds this size, a new
	// segment is created and becomes active.
	//
	//  - Default: 1MiB
	//  - Maximum: 64MB
	//  - Minimum: 64KB
	Size uint64 `json:"maxSegmentSize"`

	// Defines the filename prefix for segment files.
	// Final filename will be: `prefix.segmentId`
	//
	// Default: "kvs.data"
	//
	// Example: If Prefix is "kvs.data", a segment file is "kvs.data.0".
	Prefix string `json:"prefix"`

	// Controls how aggressively compaction runs after a rollover: compaction
	// fires only when the index has fewer live entries than
	// activeID * CompactionRatio.
	//
	// Default: 1024
	CompactionRatio uint64 `json:"compactionRatio"`
}

// Defines the configuration parameters for the store.
// It provides control over storage and maintenance aspects.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/kvs"
	DataDir string `json:"dataDir"`

	// Configures segment management including size limits, naming
	// convention, and the compaction trigger heuristic.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies the store's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.SegmentOptions = opts.SegmentOptions
	}
}

// Sets the primary data directory for the store.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the file name prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// Sets the rollover threshold for individual segment files.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentSize && size <= MaxSegmentSize {
			o.SegmentOptions.Size = size
		}
	}
}

// Sets the ratio used by the compaction trigger heuristic.
func WithCompactionRatio(ratio uint64) OptionFunc {
	return func(o *Options) {
		if ratio > 0 {
			o.SegmentOptions.CompactionRatio = ratio
		}
	}
}
