package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"jsonvault/internal/metrics"
	"jsonvault/internal/raft/raftpb"
)

// Server hosts the consensus RPC service for a single node.
type Server struct {
	addr   string
	server *grpc.Server
}

type raftService struct {
	raftpb.UnimplementedRaftTransportServer
	handler Handler
}

func (s *raftService) RequestVote(ctx context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	return s.handler.HandleRequestVote(ctx, req)
}

func (s *raftService) AppendEntries(ctx context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	return s.handler.HandleAppendEntries(ctx, req)
}

// NewServer creates a gRPC server exposing the handler on addr.
func NewServer(addr string, handler Handler) *Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor()))
	raftpb.RegisterRaftTransportServer(s, &raftService{handler: handler})
	return &Server{addr: addr, server: s}
}

// Start begins serving in the background.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	slog.Info("raft transport listening", "address", lis.Addr().String())
	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			slog.Error("raft transport server failed", "error", err)
		}
	}()
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.server.GracefulStop()
}
