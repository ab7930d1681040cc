package server

import (
	"net/http"

	"github.com/nurbek-a/driver-dispatch/internal/adapter/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	// System Health
	mux.HandleFunc("/health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux)
	setupMetricsRoute(mux)

	mux.Handle("POST /drivers/{driver_id}/beacon", m.RequireDriver(routes.beacon.Activate)) // Driver goes on/off duty
	mux.Handle("POST /dispatch/pickup", m.RequireAuth(routes.dispatch.BroadcastPickup))     // Offer a pickup to the nearest driver
	mux.HandleFunc("GET /ws/drivers", routes.stream.HandleWS)                               // WebSocket connection for drivers
}

// setupSwaggerRoutes configures the Swagger UI endpoint
func setupSwaggerRoutes(mux *http.ServeMux) {
	swaggerURL := httpSwagger.InstanceName("dispatch")
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
