// Copyright (c) 2024 The TriteDB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes the server's Prometheus counters and gauges:
// connection churn, request throughput, byte counters and per-database
// key counts, the same shape teacher's metrics package wires into every
// long-running subsystem.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge the server updates. A nil *Metrics
// is not valid; use New to construct one, or NewNoop in tests that don't
// care about registration.
type Metrics struct {
	Connections      prometheus.Gauge
	ConnectionsTotal prometheus.Counter
	RequestsTotal    *prometheus.CounterVec
	BytesRecv        prometheus.Counter
	BytesSent        prometheus.Counter
	KeysTotal        *prometheus.GaugeVec
	TTLExpired       prometheus.Counter
}

// New creates and registers every metric against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tritedb",
			Name:      "connections",
			Help:      "Number of currently connected clients.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tritedb",
			Name:      "connections_total",
			Help:      "Total connections accepted since start.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tritedb",
			Name:      "requests_total",
			Help:      "Total requests processed, labeled by opcode.",
		}, []string{"opcode"}),
		BytesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tritedb",
			Name:      "bytes_received_total",
			Help:      "Total bytes read from clients.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tritedb",
			Name:      "bytes_sent_total",
			Help:      "Total bytes written to clients.",
		}),
		KeysTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tritedb",
			Name:      "keys",
			Help:      "Number of keys per database.",
		}, []string{"db"}),
		TTLExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tritedb",
			Name:      "ttl_expired_total",
			Help:      "Total keys removed by the background TTL sweep (lazy-check removals are not counted).",
		}),
	}
	reg.MustRegister(
		m.Connections, m.ConnectionsTotal, m.RequestsTotal,
		m.BytesRecv, m.BytesSent, m.KeysTotal, m.TTLExpired,
	)
	return m
}

// NewNoop returns a Metrics registered against a private registry, for
// tests and embedders that don't want to touch the default registry.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}
