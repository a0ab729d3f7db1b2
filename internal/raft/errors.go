package raft

import "errors"

var (
	// ErrNotLeader is returned when a proposal is submitted to a node
	// that is not the current leader.
	ErrNotLeader = errors.New("not the leader")

	// ErrLeadershipLost is returned when a proposal was accepted but the
	// node lost leadership before the entry committed.
	ErrLeadershipLost = errors.New("leadership lost before commit")

	// ErrStopped is returned when the node has been shut down.
	ErrStopped = errors.New("raft node stopped")
)
