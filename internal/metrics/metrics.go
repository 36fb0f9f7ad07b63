// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_operation_duration_seconds",
			Help:    "Duration of chat persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_cache_requests_total",
			Help: "Cache lookups by cache name and result (hit, miss, error)",
		},
		[]string{"cache", "result"},
	)

	BackboneMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_backbone_messages_total",
			Help: "Messages published to or received from the pub/sub backbone",
		},
		[]string{"direction", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	WebsocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_websocket_connections",
			Help: "Currently open websocket connections on this instance",
		},
	)

	WebsocketEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_websocket_events_total",
			Help: "Inbound websocket events by name and outcome",
		},
		[]string{"event", "outcome"},
	)

	RelayedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_events_total",
			Help: "Backbone events handled by the cross-instance relay",
		},
		[]string{"event", "action"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels an operation result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveChatOperation records how long a chat operation took.
func ObserveChatOperation(operation string, start time.Time, err error) {
	ChatOperationDuration.WithLabelValues(operation, Outcome(err)).Observe(time.Since(start).Seconds())
}

func RecordCacheHit(cache string)   { CacheRequests.WithLabelValues(cache, "hit").Inc() }
func RecordCacheMiss(cache string)  { CacheRequests.WithLabelValues(cache, "miss").Inc() }
func RecordCacheError(cache string) { CacheRequests.WithLabelValues(cache, "error").Inc() }

func RecordBackbonePublish(err error) {
	BackboneMessages.WithLabelValues("published", Outcome(err)).Inc()
}

func RecordBackboneReceive(err error) {
	BackboneMessages.WithLabelValues("received", Outcome(err)).Inc()
}

func RecordWebsocketEvent(event string, err error) {
	WebsocketEvents.WithLabelValues(event, Outcome(err)).Inc()
}

func RecordRelayedEvent(event, action string) {
	RelayedEvents.WithLabelValues(event, action).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
