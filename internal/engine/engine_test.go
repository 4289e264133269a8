package engine

import (
	"context"
	"testing"

	"github.com/nilotpal-labs/kvs/pkg/errors"
	"github.com/nilotpal-labs/kvs/pkg/options"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOptions(t *testing.T) *options.Options {
	t.Helper()
	opts := options.NewDefaultOptions()
	options.WithDataDir(t.TempDir())(&opts)
	return &opts
}

func openTestEngine(t *testing.T, opts *options.Options) *Engine {
	t.Helper()
	e, err := Open(context.Background(), &Config{Options: opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return e
}

func TestSetGetRemove(t *testing.T) {
	e := openTestEngine(t, newTestOptions(t))
	defer e.Close()

	_, found, err := e.Get("missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, e.Set("key", "value"))

	value, found, err := e.Get("key")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value", value)

	require.NoError(t, e.Set("key", "updated"))
	value, found, err = e.Get("key")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "updated", value)

	require.NoError(t, e.Remove("key"))
	_, found, err = e.Get("key")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRemoveMissingKeyFails(t *testing.T) {
	e := openTestEngine(t, newTestOptions(t))
	defer e.Close()

	err := e.Remove("missing")
	require.Error(t, err)
	require.True(t, errors.IsIndexError(err))
}

func TestReplayRebuildsIndexAcrossReopen(t *testing.T) {
	opts := newTestOptions(t)

	e := openTestEngine(t, opts)
	require.NoError(t, e.Set("a", "1"))
	require.NoError(t, e.Set("b", "2"))
	require.NoError(t, e.Remove("a"))
	require.NoError(t, e.Close())

	reopened := openTestEngine(t, opts)
	defer reopened.Close()

	_, found, err := reopened.Get("a")
	require.NoError(t, err)
	require.False(t, found)

	value, found, err := reopened.Get("b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", value)
}

func TestOperationsFailAfterClose(t *testing.T) {
	e := openTestEngine(t, newTestOptions(t))
	require.NoError(t, e.Close())

	require.ErrorIs(t, e.Set("a", "1"), ErrEngineClosed)
	_, _, err := e.Get("a")
	require.ErrorIs(t, err, ErrEngineClosed)
	require.ErrorIs(t, e.Remove("a"), ErrEngineClosed)
	require.ErrorIs(t, e.Close(), ErrEngineClosed)
}

func TestRolloverAndCompactionCollapseToSegmentZero(t *testing.T) {
	opts := newTestOptions(t)
	// Force a rollover on every write after the first (whose offset is 0)
	// and an always-on compaction pass so
	// the test exercises both without needing megabytes of writes.
	opts.SegmentOptions.Size = 1
	opts.SegmentOptions.CompactionRatio = 1_000_000

	e := openTestEngine(t, opts)
	defer e.Close()

	for i := 0; i < 20; i++ {
		key := string(rune('a' + i))
		require.NoError(t, e.Set(key, key+key))
	}

	for i := 0; i < 20; i++ {
		key := string(rune('a' + i))
		value, found, err := e.Get(key)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, key+key, value)
	}

	ids, err := e.storage.ListSegmentIDs()
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, ids)
	require.Equal(t, uint64(0), e.activeID)
}
