package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"jsonvault/internal/raft/raftpb"
)

// GRPC is a Transport that dials each peer lazily and caches the
// connection.
type GRPC struct {
	mu      sync.Mutex
	peers   map[uint64]string
	conns   map[uint64]*grpc.ClientConn
	clients map[uint64]raftpb.RaftTransportClient
}

// NewGRPC creates a gRPC transport for the given peer address map.
func NewGRPC(peers map[uint64]string) *GRPC {
	return &GRPC{
		peers:   peers,
		conns:   make(map[uint64]*grpc.ClientConn, len(peers)),
		clients: make(map[uint64]raftpb.RaftTransportClient, len(peers)),
	}
}

func (t *GRPC) SendRequestVote(ctx context.Context, peerID uint64, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	client, err := t.client(peerID)
	if err != nil {
		return nil, err
	}
	return client.RequestVote(ctx, req)
}

func (t *GRPC) SendAppendEntries(ctx context.Context, peerID uint64, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	client, err := t.client(peerID)
	if err != nil {
		return nil, err
	}
	return client.AppendEntries(ctx, req)
}

func (t *GRPC) client(peerID uint64) (raftpb.RaftTransportClient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if client, ok := t.clients[peerID]; ok {
		return client, nil
	}

	addr, ok := t.peers[peerID]
	if !ok {
		return nil, fmt.Errorf("unknown peer %d", peerID)
	}

	conn, err := dialPeer(addr)
	if err != nil {
		return nil, fmt.Errorf("dial peer %d at %s: %w", peerID, addr, err)
	}

	t.conns[peerID] = conn
	client := raftpb.NewRaftTransportClient(conn)
	t.clients[peerID] = client
	return client, nil
}

func (t *GRPC) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	for id, conn := range t.conns {
		if cerr := conn.Close(); cerr != nil {
			err = fmt.Errorf("close conn to peer %d: %w", id, cerr)
		}
		delete(t.conns, id)
		delete(t.clients, id)
	}
	return err
}

func dialPeer(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)
}
