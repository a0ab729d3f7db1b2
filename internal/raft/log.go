package raft

import "jsonvault/internal/raft/raftpb"

// Log indexes are 1-based and gapless; slice position i holds index i+1.

// getTerm returns the term of the entry at the given index, or 0 for the
// sentinel index 0, or -1 when the index is past the end of the log.
//
// Assumes the lock is held when called.
func (n *Node) getTerm(idx int64) int64 {
	if idx == 0 {
		return 0
	}
	if idx > int64(len(n.log)) {
		return -1
	}
	return n.log[idx-1].Term
}

// lastLogIdxAndTerm returns the index and term of the last log entry.
//
// Assumes the lock is held when called.
func (n *Node) lastLogIdxAndTerm() (lastIdx, lastTerm int64) {
	if len(n.log) == 0 {
		return 0, 0
	}
	last := n.log[len(n.log)-1]
	return last.Index, last.Term
}

// isLogConsistent checks whether the local log matches the leader's view
// at prevLogIdx.
//
// Assumes the lock is held when called.
func (n *Node) isLogConsistent(prevLogIdx, prevLogTerm int64) bool {
	if prevLogIdx > int64(len(n.log)) {
		return false
	}
	return n.getTerm(prevLogIdx) == prevLogTerm
}

// processEntries appends the request's entries to the log, truncating any
// conflicting suffix first. Entries already present with matching terms are
// skipped so duplicate deliveries are harmless.
//
// Assumes the lock is held when called.
func (n *Node) processEntries(req *raftpb.AppendEntriesRequest) {
	for i, entry := range req.Entries {
		absIdx := req.PrevLogIndex + 1 + int64(i)
		if absIdx > int64(len(n.log)) {
			n.log = append(n.log, req.Entries[i:]...)
			return
		}
		if n.getTerm(absIdx) != entry.Term {
			n.log = n.log[:absIdx-1]
			n.log = append(n.log, req.Entries[i:]...)
			return
		}
	}
}

// isCandidateLogUpToDate implements the voting restriction: a vote is only
// granted when the candidate's log is at least as up-to-date as ours.
//
// Assumes the lock is held when called.
func (n *Node) isCandidateLogUpToDate(candidateLastIdx, candidateLastTerm int64) bool {
	myLastIdx, myLastTerm := n.lastLogIdxAndTerm()
	if candidateLastTerm != myLastTerm {
		return candidateLastTerm > myLastTerm
	}
	return candidateLastIdx >= myLastIdx
}
