package raft

import (
	"context"
	"log/slog"

	"jsonvault/internal/metrics"
	"jsonvault/internal/raft/raftpb"
)

// HandleRequestVote answers a candidate's vote solicitation.
func (n *Node) HandleRequestVote(ctx context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	metrics.RaftMessagesTotal.WithLabelValues("received", "request_vote").Inc()

	n.mu.Lock()
	defer n.mu.Unlock()

	reply := &raftpb.RequestVoteResponse{VoterId: n.id}

	if req.Term < n.term {
		reply.Term = n.term
		return reply, nil
	}

	if req.Term > n.term {
		n.becomeFollower(req.Term)
	}
	reply.Term = n.term

	if !n.isCandidateLogUpToDate(req.LastLogIndex, req.LastLogTerm) {
		slog.Debug("denying vote, candidate log behind",
			"node_id", n.id,
			"candidate_id", req.CandidateId,
			"candidate_last_log_index", req.LastLogIndex,
			"candidate_last_log_term", req.LastLogTerm,
		)
		return reply, nil
	}

	if n.votedFor != votedForNone && n.votedFor != req.CandidateId {
		slog.Debug("denying vote, already voted",
			"node_id", n.id,
			"candidate_id", req.CandidateId,
			"voted_for", n.votedFor,
		)
		return reply, nil
	}

	n.votedFor = req.CandidateId
	reply.VoteGranted = true
	n.resetElectionTimer()
	slog.Info("granted vote", "node_id", n.id, "candidate_id", req.CandidateId, "term", n.term)
	return reply, nil
}

// HandleAppendEntries processes a leader's replication or heartbeat request.
func (n *Node) HandleAppendEntries(ctx context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	metrics.RaftMessagesTotal.WithLabelValues("received", "append_entries").Inc()

	n.mu.Lock()

	reply := &raftpb.AppendEntriesResponse{}

	if req.Term < n.term {
		reply.Term = n.term
		n.mu.Unlock()
		return reply, nil
	}

	n.resetElectionTimer()

	if req.Term > n.term || n.role == Candidate {
		n.becomeFollower(req.Term)
	}
	n.leaderID = req.LeaderId
	reply.Term = n.term

	if !n.isLogConsistent(req.PrevLogIndex, req.PrevLogTerm) {
		lastIdx, _ := n.lastLogIdxAndTerm()
		reply.MatchIndex = min(req.PrevLogIndex-1, lastIdx)
		n.mu.Unlock()
		return reply, nil
	}

	if len(req.Entries) > 0 {
		slog.Debug("appending entries",
			"node_id", n.id,
			"leader_id", req.LeaderId,
			"prev_log_index", req.PrevLogIndex,
			"count", len(req.Entries),
		)
		n.processEntries(req)
	}

	reply.Success = true
	reply.MatchIndex = req.PrevLogIndex + int64(len(req.Entries))

	if req.LeaderCommit > n.commitIndex {
		lastIdx, _ := n.lastLogIdxAndTerm()
		n.commitIndex = min(req.LeaderCommit, lastIdx)
		metrics.RaftCommitIndex.Set(float64(n.commitIndex))
		n.signalApplier()
	}

	n.mu.Unlock()
	return reply, nil
}
