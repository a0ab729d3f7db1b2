package raft

import "time"

const votedForNone = 0

// Config holds the consensus timing parameters.
type Config struct {
	// ElectionTimeoutBase is the minimum time a follower waits without
	// hearing from a leader before starting an election.
	ElectionTimeoutBase time.Duration
	// ElectionTimeoutDelta is the random extra added on top of the base
	// to spread out competing candidates.
	ElectionTimeoutDelta time.Duration
	// HeartbeatInterval is how often a leader sends AppendEntries.
	// Must be well below the election timeout.
	HeartbeatInterval time.Duration
	// RPCTimeout bounds a single peer RPC.
	RPCTimeout time.Duration
}

// withDefaults fills any zero timing with its default so a partially
// populated config never produces a zero-period timer.
func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	out := *c
	if out.ElectionTimeoutBase <= 0 {
		out.ElectionTimeoutBase = def.ElectionTimeoutBase
	}
	if out.ElectionTimeoutDelta <= 0 {
		out.ElectionTimeoutDelta = def.ElectionTimeoutDelta
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = def.HeartbeatInterval
	}
	if out.RPCTimeout <= 0 {
		out.RPCTimeout = def.RPCTimeout
	}
	return &out
}

func DefaultConfig() *Config {
	return &Config{
		ElectionTimeoutBase:  150 * time.Millisecond,
		ElectionTimeoutDelta: 150 * time.Millisecond,
		HeartbeatInterval:    60 * time.Millisecond,
		RPCTimeout:           100 * time.Millisecond,
	}
}

// TestConfig returns timings tightened for tests.
func TestConfig() *Config {
	return &Config{
		ElectionTimeoutBase:  50 * time.Millisecond,
		ElectionTimeoutDelta: 50 * time.Millisecond,
		HeartbeatInterval:    20 * time.Millisecond,
		RPCTimeout:           50 * time.Millisecond,
	}
}
