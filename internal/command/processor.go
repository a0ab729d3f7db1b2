package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"jsonvault/internal/metrics"
	"jsonvault/internal/protocol"
	"jsonvault/internal/raft"
	"jsonvault/internal/storage"
)

// Consensus is the slice of the raft node the processor needs: log
// admission for writes and role inspection.
type Consensus interface {
	Propose(ctx context.Context, command []byte) (any, error)
	IsLeader() bool
}

// Processor routes decoded commands: reads are answered from the local
// store, writes go through consensus and reach the store only once their
// log entry commits.
//
// Reads deliberately bypass the log. They see this node's current view
// and are not ordered against in-flight writes.
type Processor struct {
	store     *storage.Store
	consensus Consensus
}

func NewProcessor(store *storage.Store, consensus Consensus) *Processor {
	return &Processor{store: store, consensus: consensus}
}

// Execute runs one command to completion and always produces a response;
// store and consensus failures surface as Error responses, never as
// connection-fatal conditions.
func (p *Processor) Execute(ctx context.Context, cmd protocol.Command) protocol.Response {
	start := time.Now()
	name := protocol.CommandName(cmd)

	metrics.CommandsInFlight.Inc()
	defer metrics.CommandsInFlight.Dec()

	var resp protocol.Response
	switch c := cmd.(type) {
	case *protocol.PingCommand:
		resp = &protocol.PongResponse{}
	case *protocol.GetCommand:
		value, _ := p.store.Get(c.Key)
		resp = &protocol.OkResponse{Value: value}
	case *protocol.QGetCommand:
		resp = p.queryGet(c)
	default:
		resp = p.propose(ctx, cmd)
	}

	metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	status := "success"
	if _, failed := resp.(*protocol.ErrorResponse); failed {
		status = "error"
	}
	metrics.CommandsTotal.WithLabelValues(name, status).Inc()

	return resp
}

// queryGet evaluates a path query. A missing key and an empty match list
// both answer Ok(null); a single match is unwrapped, multiple matches
// come back as an array.
func (p *Processor) queryGet(c *protocol.QGetCommand) protocol.Response {
	matches, found, err := p.store.QueryGet(c.Key, c.Query)
	if err != nil {
		return &protocol.ErrorResponse{Message: err.Error()}
	}
	if !found || len(matches) == 0 {
		return &protocol.OkResponse{}
	}
	if len(matches) == 1 {
		return &protocol.OkResponse{Value: matches[0]}
	}
	return &protocol.OkResponse{Value: matches}
}

func (p *Processor) propose(ctx context.Context, cmd protocol.Command) protocol.Response {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return &protocol.ErrorResponse{Message: err.Error()}
	}

	value, err := p.consensus.Propose(ctx, data)
	if err != nil {
		if errors.Is(err, raft.ErrNotLeader) {
			return &protocol.ErrorResponse{Message: "not leader"}
		}
		slog.Debug("proposal failed", "command", protocol.CommandName(cmd), "error", err)
		return &protocol.ErrorResponse{Message: err.Error()}
	}
	return &protocol.OkResponse{Value: value}
}
