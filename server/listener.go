package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	ErrInvalidPort  = errors.New("port out of range 1-65535")
	ErrServerClosed = errors.New("server closed")
)

// Listen binds a reusable TCP socket on every interface.
// The accept backlog is the kernel default (somaxconn).
func Listen(ctx context.Context, port int) (net.Listener, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return listen(ctx, net.JoinHostPort("", strconv.Itoa(port)))
}

func listen(ctx context.Context, address string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseControl}
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", address, err)
	}
	return ln, nil
}

// Handler answers one accepted connection and owns it
type Handler interface {
	Handle(ctx context.Context, conn net.Conn)
}

// Server accepts connections one at a time and hands each to the handler
// before accepting the next.
type Server struct {
	ln      net.Listener
	handler Handler
	logger  *zap.Logger
	closed  atomic.Bool

	mu     sync.Mutex
	active net.Conn
}

func New(ln net.Listener, handler Handler, logger *zap.Logger) *Server {
	return &Server{
		ln:      ln,
		handler: handler,
		logger:  logger,
	}
}

// Addr is the bound listener address
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve runs the accept loop. Any accept failure ends it; after Close the
// returned error is ErrServerClosed.
func (s *Server) Serve(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			s.logger.Error("Accept failed, stopping", zap.Error(err))
			return fmt.Errorf("accept: %w", err)
		}
		if !s.track(conn) {
			_ = conn.Close()
			return ErrServerClosed
		}
		s.handler.Handle(ctx, conn)
		s.track(nil)
	}
}

// track records the in-flight connection; false once the server is closed
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conn != nil && s.closed.Load() {
		return false
	}
	s.active = conn
	return true
}

// Close stops the listener and drops the in-flight connection, so a silent
// client can't hold Serve open.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := s.ln.Close()

	s.mu.Lock()
	if s.active != nil {
		_ = s.active.Close()
	}
	s.mu.Unlock()
	return err
}
