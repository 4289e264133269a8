package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	require.Equal(t, Command{Kind: KindSet, Key: "k", Value: "v"}, Set("k", "v"))
	require.Equal(t, Command{Kind: KindGet, Key: "k"}, Get("k"))
	require.Equal(t, Command{Kind: KindRm, Key: "k"}, Rm("k"))
}
