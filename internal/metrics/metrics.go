package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rag_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_chat_requests_total",
			Help: "Total number of chat exchanges by mode and outcome.",
		},
		[]string{"mode", "status"},
	)

	ChatTokensStreamedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_chat_tokens_streamed_total",
			Help: "Total number of response fragments relayed to clients.",
		},
	)

	ActiveWSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rag_ws_connections_active",
			Help: "Number of open WebSocket connections.",
		},
	)

	ActiveMemorySessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rag_memory_sessions_active",
			Help: "Number of registered conversation memory sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatRequestsTotal,
		ChatTokensStreamedTotal,
		ActiveWSConnections,
		ActiveMemorySessions,
	)
}
