// Package server implements the TCP front end: a single accept loop that
// hands each accepted connection to the worker pool as one task. Each
// connection carries exactly one request and one response, then closes.
package server

import (
	"bufio"
	"context"
	"net"
	"sync"

	"github.com/nilotpal-labs/kvs/internal/command"
	"github.com/nilotpal-labs/kvs/internal/engine"
	"github.com/nilotpal-labs/kvs/internal/pool"
	"github.com/nilotpal-labs/kvs/internal/protocol"
	"go.uber.org/zap"
)

// Server accepts TCP connections and dispatches each one to the pool.
type Server struct {
	log      *zap.SugaredLogger
	engine   *engine.Engine
	pool     *pool.Pool
	listener net.Listener

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Config holds the dependencies a Server needs: where to listen, the engine
// to serve requests against, the pool to dispatch connections onto, and a
// logger.
type Config struct {
	Addr   string
	Engine *engine.Engine
	Pool   *pool.Pool
	Logger *zap.SugaredLogger
}

// New binds a listener on config.Addr and returns a Server ready to Run.
func New(config *Config) (*Server, error) {
	listener, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return nil, err
	}

	return &Server{
		log:      config.Logger,
		engine:   config.Engine,
		pool:     config.Pool,
		listener: listener,
	}, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Run accepts connections until ctx is canceled or the listener fails. Each
// accepted connection is submitted to the pool as one task; Run itself
// never blocks on request processing.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		s.wg.Add(1)
		task := func() {
			defer s.wg.Done()
			s.handle(conn)
		}

		if err := s.pool.Submit(task); err != nil {
			s.log.Warnw("dropping connection: pool closed", "remote", conn.RemoteAddr())
			s.wg.Done()
			_ = conn.Close()
		}
	}
}

// handle reads exactly one Command off conn, processes it, writes exactly
// one Response, and closes the connection.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	cmd, err := protocol.ReadCommand(reader)
	if err != nil {
		s.log.Warnw("failed to decode request", "remote", conn.RemoteAddr(), "error", err)
		_ = protocol.WriteResponse(conn, protocol.Fail(err.Error()))
		return
	}

	resp := s.process(cmd)
	if err := protocol.WriteResponse(conn, resp); err != nil {
		s.log.Errorw("failed to write response", "remote", conn.RemoteAddr(), "error", err)
	}
}

// process executes cmd against the engine and builds the matching Response.
func (s *Server) process(cmd command.Command) protocol.Response {
	switch cmd.Kind {
	case command.KindSet:
		if err := s.engine.Set(cmd.Key, cmd.Value); err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.SuccessSet()

	case command.KindGet:
		value, found, err := s.engine.Get(cmd.Key)
		if err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.SuccessGet(value, found)

	case command.KindRm:
		if err := s.engine.Remove(cmd.Key); err != nil {
			return protocol.Fail(err.Error())
		}
		return protocol.SuccessRm()

	default:
		return protocol.Fail("unrecognized command kind")
	}
}

// Close stops accepting new connections and waits for every in-flight
// connection's task to finish.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.listener.Close()
	})
	s.wg.Wait()
	return err
}
