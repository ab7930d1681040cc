package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Business metrics
	BeaconTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_transitions_total",
			Help: "Total number of beacon transitions processed",
		},
		[]string{"service", "status", "outcome"},
	)

	PickupOffersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickup_offers_total",
			Help: "Total number of pickup offers created",
		},
		[]string{"service", "delivery"},
	)

	TripSamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_samples_total",
			Help: "Total number of trip location samples accumulated",
		},
		[]string{"service", "status"},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(service, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueriesTotal.WithLabelValues(service, operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, queue string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesPublished.WithLabelValues(service, queue, status).Inc()
}

// RecordBeaconTransition records the outcome of a beacon activation.
func RecordBeaconTransition(service, status string, err error) {
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	BeaconTransitionsTotal.WithLabelValues(service, status, outcome).Inc()
}

// RecordPickupOffer records an offer, labelled by delivery path.
func RecordPickupOffer(service string, pushed bool) {
	delivery := "stored"
	if pushed {
		delivery = "pushed"
	}
	PickupOffersTotal.WithLabelValues(service, delivery).Inc()
}

// RecordTripSample records a trip tracking sample.
func RecordTripSample(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TripSamplesTotal.WithLabelValues(service, status).Inc()
}
