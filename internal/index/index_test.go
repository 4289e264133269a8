package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(context.Background(), &Config{DataDir: t.TempDir(), Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return idx
}

func TestInsertGetRemove(t *testing.T) {
	idx := newTestIndex(t)

	_, found := idx.Get("missing")
	require.False(t, found)

	idx.Insert("key", Pointer{SegmentID: 1, Offset: 128})
	ptr, found := idx.Get("key")
	require.True(t, found)
	require.Equal(t, Pointer{SegmentID: 1, Offset: 128}, ptr)
	require.Equal(t, 1, idx.Len())

	require.True(t, idx.Remove("key"))
	require.False(t, idx.Remove("key"))

	_, found = idx.Get("key")
	require.False(t, found)
	require.Equal(t, 0, idx.Len())
}

func TestRange(t *testing.T) {
	idx := newTestIndex(t)
	idx.Insert("a", Pointer{SegmentID: 0, Offset: 0})
	idx.Insert("b", Pointer{SegmentID: 0, Offset: 10})

	seen := make(map[string]Pointer)
	idx.Range(func(key string, ptr Pointer) bool {
		seen[key] = ptr
		return true
	})

	require.Len(t, seen, 2)
	require.Equal(t, Pointer{SegmentID: 0, Offset: 0}, seen["a"])
}

func TestReplace(t *testing.T) {
	idx := newTestIndex(t)
	idx.Insert("stale", Pointer{SegmentID: 4, Offset: 4})

	idx.Replace(map[string]*Pointer{"fresh": {SegmentID: 0, Offset: 0}})

	_, found := idx.Get("stale")
	require.False(t, found)

	ptr, found := idx.Get("fresh")
	require.True(t, found)
	require.Equal(t, Pointer{SegmentID: 0, Offset: 0}, ptr)
}

func TestCloseIsIdempotentError(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Close())
	require.ErrorIs(t, idx.Close(), ErrIndexClosed)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)
}
