// Package transport carries consensus RPCs between cluster members.
package transport

import (
	"context"

	"jsonvault/internal/raft/raftpb"
)

// Transport is the client side of peer communication. Implementations must
// be safe for concurrent use.
type Transport interface {
	SendRequestVote(ctx context.Context, peerID uint64, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error)
	SendAppendEntries(ctx context.Context, peerID uint64, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error)
	Close() error
}

// Handler is the server side: the consensus node's RPC entry points.
type Handler interface {
	HandleRequestVote(ctx context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error)
	HandleAppendEntries(ctx context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error)
}
