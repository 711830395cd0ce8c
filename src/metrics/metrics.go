package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	OpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_open_connections",
			Help: "Currently open WebSocket connections",
		},
	)

	ReapedConnections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_reaped_connections_total",
			Help: "Connections removed by the reaper sweep",
		},
	)

	// Routing metrics
	MessagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_routed_total",
			Help: "Inbound messages routed by type tag",
		},
		[]string{"type"},
	)

	MessagesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_discarded_total",
			Help: "Inbound payloads dropped as undecodable",
		},
	)

	EnvelopesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_envelopes_dropped_total",
			Help: "Outbound envelopes dropped on full or closed send buffers",
		},
	)

	// External persistence metrics
	NotifyCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_notify_calls_total",
			Help: "Notification API calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
)
