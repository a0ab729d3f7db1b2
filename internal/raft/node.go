package raft

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"jsonvault/internal/metrics"
	"jsonvault/internal/raft/raftpb"
	"jsonvault/internal/raft/transport"
)

// FSM is the replicated state machine committed commands are applied to.
// Apply is called exactly once per committed entry, in log order, and its
// result is handed back to the proposer.
type FSM interface {
	Apply(command []byte) (any, error)
}

type applyResult struct {
	value any
	err   error
}

// pendingProposal tracks a proposer waiting for its entry to commit. The
// term pins the entry: if a different leader overwrites the index, the
// waiter is failed rather than handed someone else's result.
type pendingProposal struct {
	term int64
	ch   chan applyResult
}

// Node is a single consensus participant. All writes are funneled through
// Propose; committed entries are applied to the FSM in log order by a
// background goroutine.
type Node struct {
	id    uint64
	peers map[uint64]string // node id -> address, including self
	cfg   *Config

	transport transport.Transport
	fsm       FSM

	mu          sync.Mutex
	role        Role
	term        int64
	votedFor    uint64
	leaderID    uint64
	log         []*raftpb.LogEntry
	commitIndex int64
	lastApplied int64
	nextIndex   map[uint64]int64
	matchIndex  map[uint64]int64
	pending     map[int64]*pendingProposal

	electionTimer    *time.Timer
	heartbeatTicker  *time.Ticker
	resetElectionCh  chan struct{}
	resetHeartbeatCh chan struct{}
	signalApplyCh    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNode creates a consensus node. The peers map holds every cluster
// member's address keyed by node id, this node included. Node ids start
// at 1; id 0 is reserved to mean "nobody".
func NewNode(id uint64, peers map[uint64]string, tr transport.Transport, fsm FSM, cfg *Config) *Node {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Node{
		id:               id,
		peers:            peers,
		cfg:              cfg,
		transport:        tr,
		fsm:              fsm,
		role:             Follower,
		nextIndex:        make(map[uint64]int64, len(peers)),
		matchIndex:       make(map[uint64]int64, len(peers)),
		pending:          make(map[int64]*pendingProposal),
		resetElectionCh:  make(chan struct{}, 1),
		resetHeartbeatCh: make(chan struct{}, 1),
		signalApplyCh:    make(chan struct{}, 1),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// ID returns this node's id.
func (n *Node) ID() uint64 {
	return n.id
}

// Start launches the ticker and applier goroutines. The node begins as a
// follower; leadership is only ever acquired through an election, even in
// a single-node cluster.
func (n *Node) Start() {
	n.mu.Lock()
	n.electionTimer = time.NewTimer(n.randElectionInterval())
	n.heartbeatTicker = time.NewTicker(n.cfg.HeartbeatInterval)
	n.heartbeatTicker.Stop()
	n.mu.Unlock()

	n.wg.Add(2)
	go n.ticker()
	go n.applier()

	slog.Info("raft node started", "node_id", n.id, "peers", len(n.peers))
}

// Stop shuts the node down and fails any in-flight proposals.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()

	n.mu.Lock()
	n.failPending(ErrStopped)
	n.mu.Unlock()

	if n.transport != nil {
		if err := n.transport.Close(); err != nil {
			slog.Warn("failed to close raft transport", "node_id", n.id, "error", err)
		}
	}
	slog.Info("raft node stopped", "node_id", n.id)
}

// Propose appends a command to the log and blocks until the entry commits
// and is applied, returning the FSM's result. Returns ErrNotLeader when
// called on a follower or candidate.
func (n *Node) Propose(ctx context.Context, command []byte) (any, error) {
	n.mu.Lock()
	if n.role != Leader {
		n.mu.Unlock()
		metrics.RaftProposalsFailed.Inc()
		return nil, ErrNotLeader
	}

	lastIdx, _ := n.lastLogIdxAndTerm()
	entry := &raftpb.LogEntry{
		Term:    n.term,
		Index:   lastIdx + 1,
		Command: command,
	}
	n.log = append(n.log, entry)
	n.matchIndex[n.id] = entry.Index
	n.nextIndex[n.id] = entry.Index + 1
	metrics.RaftProposalsTotal.Inc()

	ch := make(chan applyResult, 1)
	n.pending[entry.Index] = &pendingProposal{term: entry.Term, ch: ch}

	// A single-node cluster has its majority already.
	n.maybeAdvanceCommit()
	n.mu.Unlock()

	n.broadcastEntries()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-ctx.Done():
		n.mu.Lock()
		delete(n.pending, entry.Index)
		n.mu.Unlock()
		metrics.RaftProposalsFailed.Inc()
		return nil, ctx.Err()
	case <-n.ctx.Done():
		metrics.RaftProposalsFailed.Inc()
		return nil, ErrStopped
	}
}

func (n *Node) majority() int {
	return len(n.peers)/2 + 1
}
