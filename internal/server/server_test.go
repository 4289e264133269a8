package server

import (
	"bufio"
	"context"
	"net"
	"testing"

	"github.com/nilotpal-labs/kvs/internal/command"
	"github.com/nilotpal-labs/kvs/internal/engine"
	"github.com/nilotpal-labs/kvs/internal/pool"
	"github.com/nilotpal-labs/kvs/internal/protocol"
	"github.com/nilotpal-labs/kvs/pkg/options"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startTestServer(t *testing.T) (*Server, func()) {
	t.Helper()

	opts := options.NewDefaultOptions()
	options.WithDataDir(t.TempDir())(&opts)

	log := zap.NewNop().Sugar()

	eng, err := engine.Open(context.Background(), &engine.Config{Options: &opts, Logger: log})
	require.NoError(t, err)

	workers := pool.New(2, log)

	srv, err := New(&Config{Addr: "127.0.0.1:0", Engine: eng, Pool: workers, Logger: log})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)

	cleanup := func() {
		cancel()
		_ = srv.Close()
		_ = workers.Close()
		_ = eng.Close()
	}

	return srv, cleanup
}

func TestServerSetGetRemove(t *testing.T) {
	srv, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := roundTrip(t, srv.Addr(), "set", "greeting", "hello")
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, resp.Status)

	resp, err = roundTrip(t, srv.Addr(), "get", "greeting", "")
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, resp.Status)
	require.True(t, resp.Found)
	require.Equal(t, "hello", resp.Value)

	resp, err = roundTrip(t, srv.Addr(), "rm", "greeting", "")
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, resp.Status)

	resp, err = roundTrip(t, srv.Addr(), "get", "greeting", "")
	require.NoError(t, err)
	require.False(t, resp.Found)
}

func TestServerRemoveMissingKeyFails(t *testing.T) {
	srv, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := roundTrip(t, srv.Addr(), "rm", "nope", "")
	require.NoError(t, err)
	require.Equal(t, protocol.StatusFail, resp.Status)
	require.NotEmpty(t, resp.Error)
}

// roundTrip opens one connection, sends one framed command, and returns the
// decoded response, mirroring exactly how internal/protocol is meant to be
// used across a real socket.
func roundTrip(t *testing.T, addr, kind, key, value string) (protocol.Response, error) {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return protocol.Response{}, err
	}
	defer conn.Close()

	var cmd command.Command
	switch kind {
	case "set":
		cmd = command.Set(key, value)
	case "get":
		cmd = command.Get(key)
	case "rm":
		cmd = command.Rm(key)
	}

	if err := protocol.WriteCommand(conn, cmd); err != nil {
		return protocol.Response{}, err
	}

	return protocol.ReadResponse(bufio.NewReader(conn))
}
