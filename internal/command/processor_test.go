package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonvault/internal/protocol"
	"jsonvault/internal/raft"
	"jsonvault/internal/storage"
)

// localConsensus applies proposals immediately, like a single-node leader
// with its trivial majority.
type localConsensus struct {
	fsm *StateMachine
}

func (c *localConsensus) Propose(_ context.Context, command []byte) (any, error) {
	return c.fsm.Apply(command)
}

func (c *localConsensus) IsLeader() bool { return true }

type followerConsensus struct{}

func (followerConsensus) Propose(context.Context, []byte) (any, error) {
	return nil, raft.ErrNotLeader
}

func (followerConsensus) IsLeader() bool { return false }

func newTestProcessor() *Processor {
	store := storage.NewStore()
	return NewProcessor(store, &localConsensus{fsm: NewStateMachine(store)})
}

func TestExecutePing(t *testing.T) {
	p := newTestProcessor()
	resp := p.Execute(context.Background(), &protocol.PingCommand{})
	assert.Equal(t, &protocol.PongResponse{}, resp)
}

func TestExecuteSetThenGet(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	resp := p.Execute(ctx, &protocol.SetCommand{Key: "user", Value: map[string]any{"name": "Alice"}})
	require.Equal(t, &protocol.OkResponse{}, resp)

	resp = p.Execute(ctx, &protocol.GetCommand{Key: "user"})
	assert.Equal(t, &protocol.OkResponse{Value: map[string]any{"name": "Alice"}}, resp)
}

func TestExecuteGetMissingKey(t *testing.T) {
	p := newTestProcessor()
	resp := p.Execute(context.Background(), &protocol.GetCommand{Key: "nope"})
	assert.Equal(t, &protocol.OkResponse{Value: nil}, resp)
}

func TestExecuteDeleteIsIdempotent(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	p.Execute(ctx, &protocol.SetCommand{Key: "k", Value: float64(1)})
	resp := p.Execute(ctx, &protocol.DeleteCommand{Key: "k"})
	require.Equal(t, &protocol.OkResponse{}, resp)

	// Deleting an absent key succeeds too.
	resp = p.Execute(ctx, &protocol.DeleteCommand{Key: "k"})
	require.Equal(t, &protocol.OkResponse{}, resp)

	resp = p.Execute(ctx, &protocol.GetCommand{Key: "k"})
	assert.Equal(t, &protocol.OkResponse{Value: nil}, resp)
}

func TestExecuteMergeCreatesMissingKey(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	p.Execute(ctx, &protocol.MergeCommand{Key: "cfg", Value: map[string]any{"a": float64(1)}})
	resp := p.Execute(ctx, &protocol.GetCommand{Key: "cfg"})
	assert.Equal(t, &protocol.OkResponse{Value: map[string]any{"a": float64(1)}}, resp)
}

func TestExecuteQueryGetResultShapes(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	p.Execute(ctx, &protocol.SetCommand{Key: "doc", Value: map[string]any{
		"users": []any{
			map[string]any{"name": "Alice"},
			map[string]any{"name": "Bob"},
		},
	}})

	// Multiple matches come back as an array.
	resp := p.Execute(ctx, &protocol.QGetCommand{Key: "doc", Query: "$.users[*].name"})
	assert.Equal(t, &protocol.OkResponse{Value: []any{"Alice", "Bob"}}, resp)

	// A single match is unwrapped.
	resp = p.Execute(ctx, &protocol.QGetCommand{Key: "doc", Query: "$.users[0].name"})
	assert.Equal(t, &protocol.OkResponse{Value: "Alice"}, resp)

	// Zero matches and a missing key both answer Ok(null).
	resp = p.Execute(ctx, &protocol.QGetCommand{Key: "doc", Query: "$.missing"})
	assert.Equal(t, &protocol.OkResponse{}, resp)
	resp = p.Execute(ctx, &protocol.QGetCommand{Key: "absent", Query: "$.users"})
	assert.Equal(t, &protocol.OkResponse{}, resp)
}

func TestExecuteQueryGetInvalidExpression(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	p.Execute(ctx, &protocol.SetCommand{Key: "doc", Value: map[string]any{"a": float64(1)}})
	resp := p.Execute(ctx, &protocol.QGetCommand{Key: "doc", Query: "$.["})
	assert.IsType(t, &protocol.ErrorResponse{}, resp)
}

func TestExecuteQuerySet(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	resp := p.Execute(ctx, &protocol.QSetCommand{Key: "cfg", Path: "a.b.c", Value: float64(5)})
	require.Equal(t, &protocol.OkResponse{}, resp)

	resp = p.Execute(ctx, &protocol.GetCommand{Key: "cfg"})
	assert.Equal(t, &protocol.OkResponse{Value: map[string]any{
		"a": map[string]any{"b": map[string]any{"c": float64(5)}},
	}}, resp)
}

func TestExecuteQuerySetThroughScalarFails(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	p.Execute(ctx, &protocol.SetCommand{Key: "cfg", Value: map[string]any{"a": "scalar"}})
	resp := p.Execute(ctx, &protocol.QSetCommand{Key: "cfg", Path: "a.b", Value: float64(1)})
	assert.IsType(t, &protocol.ErrorResponse{}, resp)

	// The failed write left the document untouched.
	got := p.Execute(ctx, &protocol.GetCommand{Key: "cfg"})
	assert.Equal(t, &protocol.OkResponse{Value: map[string]any{"a": "scalar"}}, got)
}

func TestExecuteWriteOnFollower(t *testing.T) {
	store := storage.NewStore()
	p := NewProcessor(store, followerConsensus{})
	ctx := context.Background()

	resp := p.Execute(ctx, &protocol.SetCommand{Key: "k", Value: float64(1)})
	assert.Equal(t, &protocol.ErrorResponse{Message: "not leader"}, resp)

	// Reads and pings still work on a follower.
	assert.Equal(t, &protocol.OkResponse{Value: nil}, p.Execute(ctx, &protocol.GetCommand{Key: "k"}))
	assert.Equal(t, &protocol.PongResponse{}, p.Execute(ctx, &protocol.PingCommand{}))
}

func TestStateMachineRejectsReadCommands(t *testing.T) {
	m := NewStateMachine(storage.NewStore())
	data, err := protocol.EncodeCommand(&protocol.GetCommand{Key: "k"})
	require.NoError(t, err)

	_, err = m.Apply(data)
	assert.Error(t, err)
}
