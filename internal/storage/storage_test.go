package storage

import (
	"testing"

	"github.com/nilotpal-labs/kvs/pkg/options"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	opts := options.NewDefaultOptions()
	options.WithDataDir(t.TempDir())(&opts)

	s, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return s
}

func TestListSegmentIDsEmpty(t *testing.T) {
	s := newTestStorage(t)

	ids, err := s.ListSegmentIDs()
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestOpenForAppendThenRead(t *testing.T) {
	s := newTestStorage(t)

	file, offset, err := s.OpenForAppend(0)
	require.NoError(t, err)
	require.Zero(t, offset)

	_, err = file.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	ids, err := s.ListSegmentIDs()
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, ids)

	size, err := s.SegmentSize(0)
	require.NoError(t, err)
	require.Equal(t, int64(5), size)

	reader, err := s.OpenForRead(0)
	require.NoError(t, err)
	defer reader.Close()

	buf := make([]byte, 5)
	n, err := reader.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestRenameAndRemoveSegment(t *testing.T) {
	s := newTestStorage(t)

	file, _, err := s.OpenForAppend(1)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, s.RenameSegment(1, 0))

	ids, err := s.ListSegmentIDs()
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, ids)

	require.NoError(t, s.RemoveSegment(0))
	ids, err = s.ListSegmentIDs()
	require.NoError(t, err)
	require.Empty(t, ids)
}
