// Package server accepts client connections and drives the
// decode-dispatch-encode cycle over the length-prefixed wire protocol.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"jsonvault/internal/command"
	"jsonvault/internal/metrics"
)

// Server owns the TCP listener. Each accepted connection gets its own
// goroutine; connections are fully independent of each other.
type Server struct {
	addr      string
	processor *command.Processor

	mu      sync.Mutex
	lis     net.Listener
	conns   map[net.Conn]struct{}
	closing bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(addr string, processor *command.Processor) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		processor: processor,
		conns:     make(map[net.Conn]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins listening and accepting connections in the background.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	slog.Info("server listening", "address", lis.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop(lis)
	return nil
}

// Addr returns the bound listen address. Only valid after Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lis.Addr()
}

// Stop closes the listener, then every open connection so blocked frame
// reads unblock, and waits for the handlers to drain.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	s.closing = true
	if s.lis != nil {
		s.lis.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("server stopped")
}

// trackConn registers an accepted connection for shutdown. It reports
// false when the server is already stopping, closing the connection
// instead of admitting it.
func (s *Server) trackConn(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		conn.Close()
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) acceptLoop(lis net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("accept failed", "error", err)
			continue
		}

		if !s.trackConn(conn) {
			return
		}
		metrics.ConnectionsTotal.Inc()
		metrics.ConnectionsActive.Inc()
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}
