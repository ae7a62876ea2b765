package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazar_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ActiveWebSockets is the gauge of total active WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bazar_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEvents counts WebSocket events by type.
	WebSocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazar_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazar_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// ChatMessages counts persisted chat messages by delivery path.
	ChatMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazar_chat_messages_total",
		Help: "Total number of chat messages persisted, by transport",
	}, []string{"transport"})

	// OfferDecisions counts offer lifecycle transitions by outcome.
	// Outcomes: created, accepted, rejected_sibling, conflict.
	OfferDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazar_offer_decisions_total",
		Help: "Total offer state machine decisions by outcome",
	}, []string{"outcome"})
)
