package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonvault/internal/raft/raftpb"
	"jsonvault/internal/raft/transport"
)

// stubHandler answers every RPC with canned responses.
type stubHandler struct {
	voteReply   *raftpb.RequestVoteResponse
	appendReply *raftpb.AppendEntriesResponse

	lastAppend *raftpb.AppendEntriesRequest
}

func (h *stubHandler) HandleRequestVote(_ context.Context, req *raftpb.RequestVoteRequest) (*raftpb.RequestVoteResponse, error) {
	return h.voteReply, nil
}

func (h *stubHandler) HandleAppendEntries(_ context.Context, req *raftpb.AppendEntriesRequest) (*raftpb.AppendEntriesResponse, error) {
	h.lastAppend = req
	return h.appendReply, nil
}

func freePort(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func TestGRPCTransportRoundTrip(t *testing.T) {
	handler := &stubHandler{
		voteReply:   &raftpb.RequestVoteResponse{Term: 3, VoteGranted: true, VoterId: 2},
		appendReply: &raftpb.AppendEntriesResponse{Term: 3, Success: true, MatchIndex: 2},
	}

	addr := freePort(t)
	srv := transport.NewServer(addr, handler)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	tr := transport.NewGRPC(map[uint64]string{2: addr})
	t.Cleanup(func() { tr.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vote, err := tr.SendRequestVote(ctx, 2, &raftpb.RequestVoteRequest{Term: 3, CandidateId: 1})
	require.NoError(t, err)
	assert.True(t, vote.VoteGranted)
	assert.Equal(t, uint64(2), vote.VoterId)

	entries := []*raftpb.LogEntry{
		{Term: 3, Index: 1, Command: []byte(`{"Set":{"key":"k","value":1}}`)},
		{Term: 3, Index: 2, Command: []byte(`{"Delete":{"key":"k"}}`)},
	}
	appendResp, err := tr.SendAppendEntries(ctx, 2, &raftpb.AppendEntriesRequest{
		Term:         3,
		LeaderId:     1,
		Entries:      entries,
		LeaderCommit: 1,
	})
	require.NoError(t, err)
	assert.True(t, appendResp.Success)
	assert.Equal(t, int64(2), appendResp.MatchIndex)

	// The entries arrived intact through serialization.
	require.NotNil(t, handler.lastAppend)
	require.Len(t, handler.lastAppend.Entries, 2)
	assert.Equal(t, entries[0].Command, handler.lastAppend.Entries[0].Command)
	assert.Equal(t, int64(1), handler.lastAppend.LeaderCommit)
}

func TestGRPCTransportUnknownPeer(t *testing.T) {
	tr := transport.NewGRPC(map[uint64]string{})
	t.Cleanup(func() { tr.Close() })

	_, err := tr.SendRequestVote(context.Background(), 7, &raftpb.RequestVoteRequest{Term: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown peer")
}
