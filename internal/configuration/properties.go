package configuration

import "time"

// Properties is the full application configuration, assembled from the
// base yaml file with a profile overlay on top.
type Properties struct {
	App    AppProperties    `yaml:"app"`
	Server ServerProperties `yaml:"server"`
	Raft   RaftProperties   `yaml:"raft"`
}

type AppProperties struct {
	Profile     string `yaml:"profile"`
	LogLevel    string `yaml:"log-level"`
	MetricsAddr string `yaml:"metrics-addr"`
}

type ServerProperties struct {
	Address string `yaml:"address"`
	Port    string `yaml:"port"`
}

func (s *ServerProperties) ListenAddr() string {
	return s.Address + ":" + s.Port
}

type RaftProperties struct {
	NodeID   uint64            `yaml:"node-id"`
	Peers    map[uint64]string `yaml:"peers"`
	RaftPort string            `yaml:"raft-port"`

	// Timings are in milliseconds.
	ElectionTimeoutBase  time.Duration `yaml:"election-timeout-base"`
	ElectionTimeoutDelta time.Duration `yaml:"election-timeout-delta"`
	HeartbeatInterval    time.Duration `yaml:"heartbeat-interval"`
	RPCTimeout           time.Duration `yaml:"rpc-timeout"`
}

func (r *RaftProperties) ElectionBase() time.Duration {
	return r.ElectionTimeoutBase * time.Millisecond
}

func (r *RaftProperties) ElectionDelta() time.Duration {
	return r.ElectionTimeoutDelta * time.Millisecond
}

func (r *RaftProperties) Heartbeat() time.Duration {
	return r.HeartbeatInterval * time.Millisecond
}

func (r *RaftProperties) RPCDeadline() time.Duration {
	return r.RPCTimeout * time.Millisecond
}

// RaftAddr is the consensus RPC listen address for this node.
func (r *RaftProperties) RaftAddr(serverAddress string) string {
	return serverAddress + ":" + r.RaftPort
}

// MultiNode reports whether the peer list names anyone besides this node.
func (r *RaftProperties) MultiNode() bool {
	return len(r.Peers) > 1
}
