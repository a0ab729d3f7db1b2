package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RaftIsLeader = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "is_leader",
		Help:      "Whether this node is the Raft leader (1=leader, 0=otherwise)",
	})

	RaftTerm = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "term",
		Help:      "Current Raft term",
	})

	RaftCommitIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "commit_index",
		Help:      "Current Raft commit index",
	})

	RaftAppliedIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "applied_index",
		Help:      "Last applied Raft index",
	})

	RaftElectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "elections_total",
		Help:      "Total elections started by this node",
	})

	RaftProposalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "proposals_total",
		Help:      "Total proposals submitted",
	})

	RaftProposalsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "proposals_failed_total",
		Help:      "Total failed proposals",
	})

	RaftMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "raft",
		Name:      "messages_total",
		Help:      "Total Raft messages sent/received",
	}, []string{"direction", "type"})

	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "command",
		Name:      "total",
		Help:      "Total commands processed",
	}, []string{"type", "status"})

	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jsonvault",
		Subsystem: "command",
		Name:      "duration_seconds",
		Help:      "Command processing duration",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
	}, []string{"type"})

	CommandsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonvault",
		Subsystem: "command",
		Name:      "in_flight",
		Help:      "Commands currently being processed",
	})

	StorageKeysTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonvault",
		Subsystem: "storage",
		Name:      "keys_total",
		Help:      "Total keys in the store",
	})

	StorageOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "storage",
		Name:      "operations_total",
		Help:      "Total store operations",
	}, []string{"operation"})

	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "Total gRPC requests on the peer transport",
	}, []string{"service", "method", "code"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jsonvault",
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "gRPC request duration on the peer transport",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
	}, []string{"service", "method"})

	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jsonvault",
		Subsystem: "server",
		Name:      "connections_active",
		Help:      "Open client connections",
	})

	ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "server",
		Name:      "connections_total",
		Help:      "Total accepted client connections",
	})

	ProtocolErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jsonvault",
		Subsystem: "server",
		Name:      "protocol_errors_total",
		Help:      "Total connections closed on protocol errors",
	})
)
