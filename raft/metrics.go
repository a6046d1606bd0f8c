package raft

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics collects the counters and gauges an operator dashboard polls
// alongside the admin snapshot RPC. They are updated from inside the
// consensus task and its outbound RPC goroutines but read by an external
// /metrics handler, so
// every field here must be a concurrency-safe prometheus type rather than
// a plain raftState field.
type metrics struct {
	term          prometheus.Gauge
	role          *prometheus.GaugeVec
	commitIndex   prometheus.Gauge
	lastApplied   prometheus.Gauge
	electionsWon  prometheus.Counter
	electionsLost prometheus.Counter
	rpcFailures   *prometheus.CounterVec
}

func newMetrics(id uint32, reg prometheus.Registerer) *metrics {
	labels := prometheus.Labels{"node_id": strconv.FormatUint(uint64(id), 10)}

	m := &metrics{
		term: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "raftcore",
			Name:        "current_term",
			Help:        "Current term of this node.",
			ConstLabels: labels,
		}),
		role: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "raftcore",
			Name:        "role",
			Help:        "1 for the role this node currently holds, 0 otherwise.",
			ConstLabels: labels,
		}, []string{"role"}),
		commitIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "raftcore",
			Name:        "commit_index",
			Help:        "Highest log index known to be committed.",
			ConstLabels: labels,
		}),
		lastApplied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "raftcore",
			Name:        "last_applied",
			Help:        "Highest log index applied to the state machine.",
			ConstLabels: labels,
		}),
		electionsWon: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "raftcore",
			Name:        "elections_won_total",
			Help:        "Number of elections this node has won.",
			ConstLabels: labels,
		}),
		electionsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "raftcore",
			Name:        "elections_lost_total",
			Help:        "Number of elections this node started but did not win.",
			ConstLabels: labels,
		}),
		rpcFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "raftcore",
			Name:        "rpc_failures_total",
			Help:        "Outbound RPC failures by kind.",
			ConstLabels: labels,
		}, []string{"rpc"}),
	}

	if reg != nil {
		reg.MustRegister(m.term, m.role, m.commitIndex, m.lastApplied, m.electionsWon, m.electionsLost, m.rpcFailures)
	}
	return m
}

func (m *metrics) observeRole(role Role) {
	for _, r := range []Role{Follower, Candidate, Leader} {
		v := 0.0
		if r == role {
			v = 1.0
		}
		m.role.WithLabelValues(r.String()).Set(v)
	}
}
