package framing

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	want := sample{Key: "answer", Value: 42}
	n, err := Write(&buf, want)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)
	require.Equal(t, byte(Delimiter), buf.Bytes()[buf.Len()-1])

	got, err := Read[sample](bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReadMultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(&buf, sample{Key: "a", Value: 1})
	require.NoError(t, err)
	_, err = Write(&buf, sample{Key: "b", Value: 2})
	require.NoError(t, err)

	r := bufio.NewReader(&buf)

	first, err := Read[sample](r)
	require.NoError(t, err)
	require.Equal(t, sample{Key: "a", Value: 1}, first)

	second, err := Read[sample](r)
	require.NoError(t, err)
	require.Equal(t, sample{Key: "b", Value: 2}, second)

	_, err = Read[sample](r)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadMalformedFrame(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("not-json\n"))
	_, err := Read[sample](r)
	require.Error(t, err)
}

func TestWriteReadSurvivesDelimiterCharacterInPayload(t *testing.T) {
	var buf bytes.Buffer

	want := sample{Key: "a#b#c", Value: 7}
	_, err := Write(&buf, want)
	require.NoError(t, err)

	got, err := Read[sample](bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, want, got)
}
