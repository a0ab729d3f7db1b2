package raft

import (
	"log/slog"

	"jsonvault/internal/metrics"
	"jsonvault/internal/raft/raftpb"
)

// applier feeds committed entries to the FSM in log order and hands
// results back to waiting proposers. It is the only goroutine that
// advances lastApplied, so application is strictly sequential.
func (n *Node) applier() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-n.signalApplyCh:
			n.applyCommitted()
		}
	}
}

func (n *Node) applyCommitted() {
	for {
		n.mu.Lock()
		if n.lastApplied >= n.commitIndex {
			n.mu.Unlock()
			return
		}
		applyIdx := n.lastApplied + 1
		entry := n.log[applyIdx-1]
		n.mu.Unlock()

		// Entries at or below commitIndex are never truncated, so the
		// entry stays valid outside the lock.
		value, err := n.fsm.Apply(entry.Command)
		if err != nil {
			slog.Debug("command rejected by state machine", "node_id", n.id, "index", applyIdx, "error", err)
		}

		n.mu.Lock()
		n.lastApplied = applyIdx
		metrics.RaftAppliedIndex.Set(float64(applyIdx))
		n.notifyWaiter(entry, value, err)
		n.mu.Unlock()
	}
}

// notifyWaiter delivers the apply result to the proposer of the entry, if
// one is still waiting. An entry committed under a different term than the
// waiter registered means the index was overwritten by another leader.
//
// Assumes the lock is held when called.
func (n *Node) notifyWaiter(entry *raftpb.LogEntry, value any, err error) {
	p, ok := n.pending[entry.Index]
	if !ok {
		return
	}
	delete(n.pending, entry.Index)

	if p.term != entry.Term {
		p.ch <- applyResult{err: ErrLeadershipLost}
		return
	}
	p.ch <- applyResult{value: value, err: err}
}

// signalApplier nudges the applier goroutine without blocking.
func (n *Node) signalApplier() {
	select {
	case n.signalApplyCh <- struct{}{}:
	default:
	}
}
