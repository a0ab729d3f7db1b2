package transport

import (
	"context"
	"fmt"
	"sync"

	"jsonvault/internal/raft/raftpb"
)

// MemoryNetwork connects a set of in-process nodes directly, without
// sockets. Used by cluster tests.
type MemoryNetwork struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	downed   map[uint64]bool
}

func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{
		handlers: make(map[uint64]Handler),
		downed:   make(map[uint64]bool),
	}
}

// Join registers a node's handler and returns its transport.
func (m *MemoryNetwork) Join(id uint64, handler Handler) *Memory {
	m.mu.Lock()
	m.handlers[id] = handler
	m.mu.Unlock()
	return &Memory{network: m, self: id}
}

// SetDown severs a node from the network in both directions.
func (m *MemoryNetwork) SetDown(id uint64, down bool) {
	m.mu.Lock()
	m.downed[id] = down
	m.mu.Unlock()
}

func (m *MemoryNetwork) handler(from, to uint64) (Handler, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.downed[from] || m.downed[to] {
		return nil, fmt.Errorf("peer %d unreachable", to)
	}
	h, ok := m.handlers[to]
	if !ok {
		return nil, fmt.Errorf("unknown peer %d", to)
	}
	return h, nil
}

// Memory is one node's view of a MemoryNetwork.
type Memory struct {
	network *MemoryNetwork
	self    uint64
}

func (t *Memory) SendRequestVote(ctx context.Context, peerID uint64, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	h, err := t.network.handler(t.self, peerID)
	if err != nil {
		return nil, err
	}
	return h.HandleRequestVote(ctx, req)
}

func (t *Memory) SendAppendEntries(ctx context.Context, peerID uint64, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	h, err := t.network.handler(t.self, peerID)
	if err != nil {
		return nil, err
	}
	return h.HandleAppendEntries(ctx, req)
}

func (t *Memory) Close() error {
	return nil
}
