package server

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"jsonvault/internal/metrics"
	"jsonvault/internal/protocol"
)

// handleConnection runs the per-connection request loop: one frame in,
// one frame out, until the peer disconnects or sends something the codec
// cannot decode.
func (s *Server) handleConnection(conn net.Conn) {
	client := conn.RemoteAddr().String()
	start := time.Now()
	slog.Debug("connection established", "client", client)

	defer func() {
		s.untrackConn(conn)
		conn.Close()
		metrics.ConnectionsActive.Dec()
		s.wg.Done()
		slog.Debug("connection closed", "client", client, "duration_ms", time.Since(start).Milliseconds())
	}()

	for {
		cmd, err := protocol.ReadCommand(conn)
		if err != nil {
			s.logReadError(client, err)
			return
		}

		resp := s.processor.Execute(s.ctx, cmd)
		if err := protocol.WriteResponse(conn, resp); err != nil {
			slog.Warn("failed to write response", "client", client, "error", err)
			return
		}
	}
}

// logReadError classifies a failed frame read. Clean disconnects are
// routine; anything the codec rejects is a protocol violation and counts
// as such. All of them end the connection without a response.
func (s *Server) logReadError(client string, err error) {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return
	case errors.Is(err, protocol.ErrFrameTooLarge),
		errors.Is(err, protocol.ErrUnknownCommand),
		errors.Is(err, protocol.ErrMalformedPayload),
		errors.Is(err, io.ErrUnexpectedEOF):
		metrics.ProtocolErrorsTotal.Inc()
		slog.Warn("protocol error", "client", client, "error", err)
	default:
		slog.Warn("read failed", "client", client, "error", err)
	}
}
