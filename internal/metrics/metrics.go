package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auction_house",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_house",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "auction_house",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	bids = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_house",
			Subsystem: "bidding",
			Name:      "bids_total",
			Help:      "Bid attempts by outcome.",
		},
		[]string{"outcome"},
	)

	buyNows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_house",
			Subsystem: "bidding",
			Name:      "buy_now_total",
			Help:      "Buy-now attempts by outcome.",
		},
		[]string{"outcome"},
	)

	antiSnipeExtensions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auction_house",
			Subsystem: "bidding",
			Name:      "anti_snipe_extensions_total",
			Help:      "Auctions whose end date was pushed back by a late bid.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_house",
			Subsystem: "notify",
			Name:      "outbid_notices_total",
			Help:      "Outbid notices by delivery outcome.",
		},
		[]string{"outcome"},
	)

	reconciled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auction_house",
			Subsystem: "reconciler",
			Name:      "auctions_closed_total",
			Help:      "Auctions whose stored status was moved to expired or sold.",
		},
	)

	reconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_house",
			Subsystem: "reconciler",
			Name:      "runs_total",
			Help:      "Reconciliation runs by result.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bids,
		buyNows,
		antiSnipeExtensions,
		notifications,
		reconciled,
		reconcileRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records in-flight, count and latency per matched route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordBid counts a bid attempt, e.g. "accepted", "too_low", "closed".
func RecordBid(outcome string) {
	bids.WithLabelValues(outcome).Inc()
}

// RecordBuyNow counts a buy-now attempt by outcome.
func RecordBuyNow(outcome string) {
	buyNows.WithLabelValues(outcome).Inc()
}

// RecordAntiSnipe counts an end date extension.
func RecordAntiSnipe() {
	antiSnipeExtensions.Inc()
}

// RecordNotification counts an outbid notice by outcome, e.g. "sent" or "dropped".
func RecordNotification(outcome string) {
	notifications.WithLabelValues(outcome).Inc()
}

// RecordReconcile records one reconciliation run and how many auctions it closed.
func RecordReconcile(closed int, success bool) {
	reconcileRuns.WithLabelValues(strconv.FormatBool(success)).Inc()
	if closed > 0 {
		reconciled.Add(float64(closed))
	}
}
