package raft

import (
	"math/rand"
	"time"
)

// ticker drives the election timer and the leader heartbeat from a single
// goroutine so the two never race on timer resets.
func (n *Node) ticker() {
	defer func() {
		n.heartbeatTicker.Stop()
		n.electionTimer.Stop()
		n.wg.Done()
	}()

	for {
		select {
		case <-n.ctx.Done():
			return

		case <-n.resetElectionCh:
			n.heartbeatTicker.Stop()
			if !n.electionTimer.Stop() {
				select {
				case <-n.electionTimer.C:
				default:
				}
			}
			n.electionTimer.Reset(n.randElectionInterval())

		case <-n.resetHeartbeatCh:
			if !n.electionTimer.Stop() {
				select {
				case <-n.electionTimer.C:
				default:
				}
			}
			n.heartbeatTicker.Reset(n.cfg.HeartbeatInterval)

		case <-n.electionTimer.C:
			n.mu.Lock()
			if n.role == Leader {
				n.mu.Unlock()
				continue
			}
			n.electionTimer.Reset(n.randElectionInterval())
			n.startElection()

		case <-n.heartbeatTicker.C:
			if n.IsLeader() {
				n.broadcastEntries()
			}
		}
	}
}

// resetElectionTimer asks the ticker to restart the election countdown.
// Safe to call with the lock held; the signal channel never blocks.
func (n *Node) resetElectionTimer() {
	select {
	case n.resetElectionCh <- struct{}{}:
	default:
	}
}

// resetHeartbeatTicker asks the ticker to start the leader heartbeat.
func (n *Node) resetHeartbeatTicker() {
	select {
	case n.resetHeartbeatCh <- struct{}{}:
	default:
	}
}

func (n *Node) randElectionInterval() time.Duration {
	return n.cfg.ElectionTimeoutBase + time.Duration(rand.Int63n(int64(n.cfg.ElectionTimeoutDelta)))
}
