package raft

import (
	"log/slog"

	"jsonvault/internal/metrics"
)

// Role is the consensus role of a node.
type Role uint32

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// becomeFollower transitions the node to the follower role. A term higher
// than the current one resets the vote.
//
// Assumes the lock is held when called.
func (n *Node) becomeFollower(term int64) {
	wasLeader := n.role == Leader
	n.role = Follower
	if term > n.term {
		n.term = term
		n.votedFor = votedForNone
		n.leaderID = 0
	}
	if wasLeader {
		n.failPending(ErrLeadershipLost)
	}
	metrics.RaftIsLeader.Set(0)
	metrics.RaftTerm.Set(float64(n.term))
	n.resetElectionTimer()
	slog.Debug("became follower", "node_id", n.id, "term", n.term)
}

// becomeLeader transitions the node to the leader role and reinitializes
// the per-peer replication indexes.
//
// Assumes the lock is held when called.
func (n *Node) becomeLeader() {
	slog.Info("became leader", "node_id", n.id, "term", n.term)
	n.role = Leader
	n.leaderID = n.id

	lastIdx, _ := n.lastLogIdxAndTerm()
	for id := range n.peers {
		n.nextIndex[id] = lastIdx + 1
		n.matchIndex[id] = 0
	}
	n.matchIndex[n.id] = lastIdx

	metrics.RaftIsLeader.Set(1)
	n.resetHeartbeatTicker()
}

// failPending rejects every in-flight proposal. Called when stepping down:
// the entries may still commit under the new leader, but this node can no
// longer vouch for them.
//
// Assumes the lock is held when called.
func (n *Node) failPending(err error) {
	for idx, p := range n.pending {
		p.ch <- applyResult{err: err}
		delete(n.pending, idx)
	}
}

// IsLeader reports whether this node currently believes it is the leader.
func (n *Node) IsLeader() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.role == Leader
}

// Status is a point-in-time snapshot of the node's consensus state.
type Status struct {
	ID          uint64
	Role        Role
	Term        int64
	LeaderID    uint64
	CommitIndex int64
	LastApplied int64
	LogLength   int64
}

func (n *Node) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Status{
		ID:          n.id,
		Role:        n.role,
		Term:        n.term,
		LeaderID:    n.leaderID,
		CommitIndex: n.commitIndex,
		LastApplied: n.lastApplied,
		LogLength:   int64(len(n.log)),
	}
}
