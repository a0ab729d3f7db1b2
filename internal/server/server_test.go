package server_test

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonvault/client"
	"jsonvault/internal/command"
	"jsonvault/internal/raft"
	"jsonvault/internal/server"
	"jsonvault/internal/storage"
)

// startTestNode wires a full single-node stack: store, state machine,
// consensus, processor, TCP server.
func startTestNode(t *testing.T) string {
	t.Helper()

	store := storage.NewStore()
	fsm := command.NewStateMachine(store)

	// A single-node cluster never sends peer RPCs, so no transport is
	// needed.
	node := raft.NewNode(1, map[uint64]string{1: "node-1"}, nil, fsm, raft.TestConfig())
	node.Start()
	t.Cleanup(node.Stop)

	require.Eventually(t, node.IsLeader, 5*time.Second, 10*time.Millisecond, "node never became leader")

	srv := server.New("127.0.0.1:0", command.NewProcessor(store, node))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	return srv.Addr().String()
}

func dialTestClient(t *testing.T, addr string) *client.Client {
	t.Helper()
	c, err := client.Dial(addr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestServerEndToEnd(t *testing.T) {
	addr := startTestNode(t)
	c := dialTestClient(t, addr)

	require.NoError(t, c.Ping())

	require.NoError(t, c.Set("user:1", map[string]any{"name": "Alice", "age": float64(30)}))
	got, err := c.Get("user:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Alice", "age": float64(30)}, got)

	require.NoError(t, c.Merge("user:1", map[string]any{"age": float64(31), "city": "Oslo"}))
	got, err = c.Get("user:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Alice", "age": float64(31), "city": "Oslo"}, got)

	require.NoError(t, c.Delete("user:1"))
	got, err = c.Get("user:1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestServerPathOperations(t *testing.T) {
	addr := startTestNode(t)
	c := dialTestClient(t, addr)

	require.NoError(t, c.Set("doc", map[string]any{
		"users": []any{
			map[string]any{"name": "Alice"},
			map[string]any{"name": "Bob"},
		},
	}))

	names, err := c.QueryGet("doc", "$.users[*].name")
	require.NoError(t, err)
	assert.Equal(t, []any{"Alice", "Bob"}, names)

	require.NoError(t, c.QuerySet("cfg", "a.b.c", float64(5)))
	got, err := c.Get("cfg")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(5)}}}, got)
}

func TestServerStoreErrorKeepsConnectionOpen(t *testing.T) {
	addr := startTestNode(t)
	c := dialTestClient(t, addr)

	require.NoError(t, c.Set("k", map[string]any{"a": "scalar"}))

	err := c.QuerySet("k", "a.b", float64(1))
	var serverErr *client.ServerError
	require.ErrorAs(t, err, &serverErr)

	// The connection survived the error.
	require.NoError(t, c.Ping())
	got, err := c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "scalar"}, got)
}

func TestServerClosesOnMalformedFrame(t *testing.T) {
	addr := startTestNode(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	payload := []byte(`{"Nonsense":{}}`)
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	_, err = conn.Write(append(header[:], payload...))
	require.NoError(t, err)

	// No response; the server closes the socket.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerClosesOnOversizedFrame(t *testing.T) {
	addr := startTestNode(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], 1<<31)
	_, err = conn.Write(header[:])
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerStopUnblocksIdleConnections(t *testing.T) {
	store := storage.NewStore()
	fsm := command.NewStateMachine(store)
	node := raft.NewNode(1, map[uint64]string{1: "node-1"}, nil, fsm, raft.TestConfig())
	node.Start()
	t.Cleanup(node.Stop)

	srv := server.New("127.0.0.1:0", command.NewProcessor(store, node))
	require.NoError(t, srv.Start())

	// An idle client that never sends a frame; its handler is parked in
	// a read with no deadline.
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return while a connection sat idle")
	}

	// The server side closed the socket, so the client's next read fails.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestServerConcurrentClients(t *testing.T) {
	addr := startTestNode(t)

	const clients = 8
	const perClient = 20

	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := client.Dial(addr)
			if !assert.NoError(t, err) {
				return
			}
			defer c.Close()

			for j := 0; j < perClient; j++ {
				key := fmt.Sprintf("client-%d:key-%d", i, j)
				if !assert.NoError(t, c.Set(key, float64(j))) {
					return
				}
				got, err := c.Get(key)
				if assert.NoError(t, err) {
					assert.Equal(t, float64(j), got)
				}
			}
		}(i)
	}
	wg.Wait()
}
