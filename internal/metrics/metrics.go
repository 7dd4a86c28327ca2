// File: internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapacityRejections counts create/restore attempts refused by the live cap.
	CapacityRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentdesk",
		Name:      "capacity_rejections_total",
		Help:      "Conversation creates or restores rejected because the live cap was reached.",
	}, []string{"operation"})

	// PersistFailures counts best-effort writes that did not reach the backend.
	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentdesk",
		Name:      "persist_failures_total",
		Help:      "Key-value writes that failed and left state dirty.",
	}, []string{"key"})

	// Sends counts chat send cycles by outcome: ok, responder_error, rejected.
	Sends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentdesk",
		Name:      "chat_sends_total",
		Help:      "Chat send cycles by outcome.",
	}, []string{"outcome"})

	ResponderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentdesk",
		Name:      "responder_latency_seconds",
		Help:      "Latency of external responder calls.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	TrashPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agentdesk",
		Name:      "trash_purged_total",
		Help:      "Trash entries removed by the retention job.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentdesk",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route template and status.",
	}, []string{"method", "route", "status"})
)
