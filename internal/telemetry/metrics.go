// Package telemetry holds the Prometheus collectors scraped on the
// metrics port and the gin middleware that feeds the HTTP ones. Scraping
// is separate from the application port so a slow /metrics client can
// never hold up order traffic.
package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method, path and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// OrdersTotal counts accepted order events by action and symbol.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_orders_total",
			Help: "Total number of order events by action and symbol",
		},
		[]string{"action", "symbol"},
	)

	// OrderErrorsTotal counts rejected order events by the sentinel error
	// that caused the rejection.
	OrderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_order_errors_total",
			Help: "Total number of rejected order events by reason",
		},
		[]string{"reason", "symbol"},
	)

	// FillsTotal counts individual fills produced by the matching core.
	FillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_fills_total",
			Help: "Total number of fills by symbol",
		},
		[]string{"symbol"},
	)

	// OrderBookDepth tracks the aggregate resting quantity at the best
	// price on each side, refreshed after every successful event.
	OrderBookDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "exchange_orderbook_best_quantity",
			Help: "Resting quantity at the best price, by symbol and side",
		},
		[]string{"symbol", "side"},
	)

	// SequencerInboundSeq tracks the current inbound sequence number.
	SequencerInboundSeq = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exchange_sequencer_inbound_seq",
			Help: "Current inbound sequence number",
		},
	)

	// SequencerOutboundSeq tracks the current outbound sequence number.
	SequencerOutboundSeq = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exchange_sequencer_outbound_seq",
			Help: "Current outbound sequence number",
		},
	)
)

// PrometheusMiddleware records per-request latency, keyed by the route's
// template path so cardinality stays bounded regardless of symbol count.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Observe(duration)
	}
}
