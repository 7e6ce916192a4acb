package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// StockVerifications counts verify calls by outcome (available, unavailable, error)
	StockVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_verifications_total",
			Help: "Total number of stock verification requests",
		},
		[]string{"outcome"},
	)

	// StockAdjustments counts applied or refused stock deltas per category
	StockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "Total number of stock adjustments",
		},
		[]string{"category", "outcome"},
	)

	// OrdersTotal tracks orders by the status they were written with
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of orders",
		},
		[]string{"status"},
	)

	// InventoryLevel is refreshed by the scheduled stock report
	InventoryLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_level",
			Help: "Current inventory level",
		},
		[]string{"category", "product_id"},
	)

	// DatabaseUp is 1 while the connection monitor sees the database
	DatabaseUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_up",
			Help: "Whether the database is reachable (1=up, 0=down)",
		},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(serviceName, c.Request.Method, c.FullPath(), status).Inc()
		RequestDuration.WithLabelValues(serviceName, c.Request.Method, c.FullPath()).Observe(duration)
	}
}
