package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "detourmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "detourmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "detourmap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Planner backend metrics
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "detourmap",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Planner requests by operation and outcome",
	}, []string{"operation", "outcome"})

	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "detourmap",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Planner request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	// Session metrics
	SyncActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "detourmap",
		Subsystem: "session",
		Name:      "actions_total",
		Help:      "Session actions by kind and outcome, including rejected and stale ones",
	}, []string{"action", "outcome"})

	// Map surface metrics
	LiveLayers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "detourmap",
		Subsystem: "map",
		Name:      "live_layers",
		Help:      "Layers currently drawn on the map surface",
	}, []string{"kind"})

	LayerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "detourmap",
		Subsystem: "map",
		Name:      "layer_events_total",
		Help:      "Map surface events emitted",
	}, []string{"op"})

	LayerEventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "detourmap",
		Subsystem: "map",
		Name:      "layer_event_publish_errors_total",
		Help:      "Map surface events that could not be published",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "detourmap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
