package raft

import (
	"context"
	"log/slog"
	"slices"

	"jsonvault/internal/metrics"
	"jsonvault/internal/raft/raftpb"
)

// broadcastEntries sends AppendEntries to every peer. Requests double as
// heartbeats when a peer is already caught up.
func (n *Node) broadcastEntries() {
	n.mu.Lock()
	if n.role != Leader {
		n.mu.Unlock()
		return
	}
	term := n.term
	reqs := make(map[uint64]*raftpb.AppendEntriesRequest, len(n.peers)-1)
	for id := range n.peers {
		if id == n.id {
			continue
		}
		reqs[id] = n.buildAppendRequest(id)
	}
	n.mu.Unlock()

	for id, req := range reqs {
		go n.sendEntries(id, term, req)
	}
}

// buildAppendRequest assembles the AppendEntries request for one peer
// based on its nextIndex.
//
// Assumes the lock is held when called.
func (n *Node) buildAppendRequest(peerID uint64) *raftpb.AppendEntriesRequest {
	next := n.nextIndex[peerID]
	if next < 1 {
		next = 1
	}
	prevLogIdx := next - 1

	entries := make([]*raftpb.LogEntry, len(n.log[prevLogIdx:]))
	copy(entries, n.log[prevLogIdx:])

	return &raftpb.AppendEntriesRequest{
		Term:         n.term,
		LeaderId:     n.id,
		PrevLogIndex: prevLogIdx,
		PrevLogTerm:  n.getTerm(prevLogIdx),
		Entries:      entries,
		LeaderCommit: n.commitIndex,
	}
}

func (n *Node) sendEntries(peerID uint64, term int64, req *raftpb.AppendEntriesRequest) {
	tctx, tcancel := context.WithTimeout(n.ctx, n.cfg.RPCTimeout)
	defer tcancel()

	metrics.RaftMessagesTotal.WithLabelValues("sent", "append_entries").Inc()
	reply, err := n.transport.SendAppendEntries(tctx, peerID, req)
	if err != nil {
		slog.Debug("append entries failed", "node_id", n.id, "peer_id", peerID, "error", err)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if reply.Term > n.term {
		n.becomeFollower(reply.Term)
		return
	}
	if n.role != Leader || n.term != term {
		return
	}

	if reply.Success {
		newMatch := req.PrevLogIndex + int64(len(req.Entries))
		if newMatch > n.matchIndex[peerID] {
			n.matchIndex[peerID] = newMatch
		}
		n.nextIndex[peerID] = n.matchIndex[peerID] + 1
		n.maybeAdvanceCommit()
		return
	}

	// Rejected on log consistency; back nextIndex up to the follower's
	// hint and retry on the next heartbeat.
	n.nextIndex[peerID] = max(reply.MatchIndex+1, 1)
}

// maybeAdvanceCommit moves commitIndex to the highest index replicated on
// a majority. Only entries from the current term commit by counting.
//
// Assumes the lock is held when called.
func (n *Node) maybeAdvanceCommit() {
	matches := make([]int64, 0, len(n.peers))
	for id := range n.peers {
		matches = append(matches, n.matchIndex[id])
	}
	slices.Sort(matches)
	newCommit := matches[len(matches)-n.majority()]

	if newCommit > n.commitIndex && n.getTerm(newCommit) == n.term {
		n.commitIndex = newCommit
		metrics.RaftCommitIndex.Set(float64(n.commitIndex))
		n.signalApplier()
	}
}
