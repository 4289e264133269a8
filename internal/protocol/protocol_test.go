package protocol

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/nilotpal-labs/kvs/internal/command"
	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	want := command.Set("key", "value")
	require.NoError(t, WriteCommand(&buf, want))

	got, err := ReadCommand(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestResponseRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	want := SuccessGet("value", true)
	require.NoError(t, WriteResponse(&buf, want))

	got, err := ReadResponse(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFailResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, Fail("key not found")))

	got, err := ReadResponse(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, StatusFail, got.Status)
	require.Equal(t, "key not found", got.Error)
}
