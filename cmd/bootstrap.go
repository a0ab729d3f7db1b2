package main

import (
	"fmt"

	"jsonvault/internal/command"
	"jsonvault/internal/configuration"
	"jsonvault/internal/metrics"
	"jsonvault/internal/raft"
	"jsonvault/internal/raft/transport"
	"jsonvault/internal/server"
	"jsonvault/internal/storage"
)

// app owns the assembled node: store, consensus, client server, and the
// side servers for peer RPC and metrics.
type app struct {
	node       *raft.Node
	raftServer *transport.Server
	server     *server.Server
	metrics    *metrics.Server
}

func newApp(cfg *configuration.Properties) (*app, error) {
	store := storage.NewStore()
	fsm := command.NewStateMachine(store)

	raftCfg := &raft.Config{
		ElectionTimeoutBase:  cfg.Raft.ElectionBase(),
		ElectionTimeoutDelta: cfg.Raft.ElectionDelta(),
		HeartbeatInterval:    cfg.Raft.Heartbeat(),
		RPCTimeout:           cfg.Raft.RPCDeadline(),
	}

	var tr transport.Transport
	if cfg.Raft.MultiNode() {
		tr = transport.NewGRPC(cfg.Raft.Peers)
	}
	node := raft.NewNode(cfg.Raft.NodeID, cfg.Raft.Peers, tr, fsm, raftCfg)

	a := &app{node: node}

	if cfg.Raft.RaftPort != "" {
		a.raftServer = transport.NewServer(cfg.Raft.RaftAddr(cfg.Server.Address), node)
		if err := a.raftServer.Start(); err != nil {
			return nil, fmt.Errorf("start raft transport: %w", err)
		}
	}

	node.Start()

	a.server = server.New(cfg.Server.ListenAddr(), command.NewProcessor(store, node))
	if err := a.server.Start(); err != nil {
		a.Stop()
		return nil, fmt.Errorf("start server: %w", err)
	}

	if cfg.App.MetricsAddr != "" {
		a.metrics = metrics.NewServer(cfg.App.MetricsAddr)
		a.metrics.Start()
	}

	return a, nil
}

// Stop shuts components down front to back: stop taking client requests,
// then consensus, then the side servers.
func (a *app) Stop() {
	if a.server != nil {
		a.server.Stop()
	}
	a.node.Stop()
	if a.raftServer != nil {
		a.raftServer.Stop()
	}
	if a.metrics != nil {
		a.metrics.Stop()
	}
}
