package raft

import (
	"context"
	"log/slog"
	"time"

	"jsonvault/internal/metrics"
	"jsonvault/internal/raft/raftpb"
)

// startElection moves the node to candidate in a fresh term and solicits
// votes. In a single-node cluster the self-vote is already a majority and
// leadership is taken immediately.
//
// Assumes the lock is held when called; releases it.
func (n *Node) startElection() {
	n.role = Candidate
	n.term++
	n.votedFor = n.id
	electionTerm := n.term
	lastLogIdx, lastLogTerm := n.lastLogIdxAndTerm()

	metrics.RaftElectionsTotal.Inc()
	metrics.RaftTerm.Set(float64(n.term))
	slog.Info("starting election", "node_id", n.id, "term", electionTerm)

	votes := 1
	if votes >= n.majority() {
		n.becomeLeader()
		n.mu.Unlock()
		n.broadcastEntries()
		return
	}
	n.mu.Unlock()

	req := &raftpb.RequestVoteRequest{
		Term:         electionTerm,
		CandidateId:  n.id,
		LastLogIndex: lastLogIdx,
		LastLogTerm:  lastLogTerm,
	}

	repliesCh := make(chan *raftpb.RequestVoteResponse, len(n.peers)-1)
	for id := range n.peers {
		if id == n.id {
			continue
		}
		go func(peerID uint64) {
			tctx, tcancel := context.WithTimeout(n.ctx, n.cfg.RPCTimeout)
			defer tcancel()

			metrics.RaftMessagesTotal.WithLabelValues("sent", "request_vote").Inc()
			reply, err := n.transport.SendRequestVote(tctx, peerID, req)
			if err != nil {
				slog.Warn("request vote failed", "node_id", n.id, "peer_id", peerID, "error", err)
				return
			}
			repliesCh <- reply
		}(id)
	}

	go n.countVotes(electionTerm, votes, repliesCh)
}

// countVotes collects vote replies until a majority is reached, the
// election window expires, or a higher term forces a step-down.
func (n *Node) countVotes(electionTerm int64, votes int, repliesCh <-chan *raftpb.RequestVoteResponse) {
	timer := time.NewTimer(n.randElectionInterval())
	defer timer.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-timer.C:
			slog.Debug("election timed out", "node_id", n.id, "term", electionTerm)
			return
		case reply := <-repliesCh:
			n.mu.Lock()
			if reply.Term > n.term {
				n.becomeFollower(reply.Term)
				n.mu.Unlock()
				return
			}
			if n.term != electionTerm || n.role != Candidate {
				n.mu.Unlock()
				return
			}
			if reply.VoteGranted {
				votes++
				slog.Debug("vote granted", "node_id", n.id, "voter_id", reply.VoterId, "votes", votes)
				if votes >= n.majority() {
					n.becomeLeader()
					n.mu.Unlock()
					n.broadcastEntries()
					return
				}
			}
			n.mu.Unlock()
		}
	}
}
