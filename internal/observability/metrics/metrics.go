package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fasterr_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fasterr_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	storeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fasterr_store_writes_total",
		Help: "Count of durable store writes by namespace and result",
	}, []string{"namespace", "result"})

	discoveryQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fasterr_discovery_queries_total",
		Help: "Count of discovery queries by sort option",
	}, []string{"sort"})

	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fasterr_chat_messages_total",
		Help: "Count of chat messages by origin (user or simulated reply)",
	}, []string{"origin"})

	notificationsRaised = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fasterr_chat_notifications_total",
		Help: "Count of unread-reply notifications raised",
	})

	collaboratorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fasterr_collaborator_calls_total",
		Help: "Count of generative collaborator calls by operation and result",
	}, []string{"operation", "result"})

	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fasterr_catalog_products",
		Help: "Number of products in the local catalog",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveStoreWrite increments the store write counter for a namespace
func ObserveStoreWrite(namespace, result string) {
	storeWrites.WithLabelValues(namespace, result).Inc()
}

// ObserveQuery records one discovery query
func ObserveQuery(sort string) {
	discoveryQueries.WithLabelValues(sort).Inc()
}

// ObserveMessage records a chat append by origin
func ObserveMessage(origin string) {
	messagesSent.WithLabelValues(origin).Inc()
}

// ObserveNotification records a raised unread notification
func ObserveNotification() {
	notificationsRaised.Inc()
}

// ObserveCollaborator records a generative collaborator call outcome
func ObserveCollaborator(operation, result string) {
	collaboratorCalls.WithLabelValues(operation, result).Inc()
}

// SetCatalogSize sets the catalog size gauge
func SetCatalogSize(count int) {
	if count < 0 {
		count = 0
	}
	catalogSize.Set(float64(count))
}
