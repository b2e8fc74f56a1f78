package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_http_requests_total",
			Help: "Total number of HTTP requests processed by the feed service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	relayEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_relay_events_total",
			Help: "Total number of envelopes published by the relay.",
		},
		[]string{"event"},
	)
	relayPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_relay_publish_errors_total",
			Help: "Total number of relay publish failures (swallowed).",
		},
	)
	activeSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_subscription_active",
			Help: "Number of active room subscriptions.",
		},
	)
	liveEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_live_events_total",
			Help: "Total number of live events received by subscriptions.",
		},
		[]string{"event"},
	)
	decodeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_live_decode_errors_total",
			Help: "Total number of malformed live events dropped.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		relayEventsTotal,
		relayPublishErrorsTotal,
		activeSubscriptions,
		liveEventsTotal,
		decodeErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncRelayEvent(event string) {
	relayEventsTotal.WithLabelValues(event).Inc()
}

func IncRelayPublishError() {
	relayPublishErrorsTotal.Inc()
}

func IncActiveSubscriptions() {
	activeSubscriptions.Inc()
}

func DecActiveSubscriptions() {
	activeSubscriptions.Dec()
}

func IncLiveEvent(event string) {
	liveEventsTotal.WithLabelValues(event).Inc()
}

func IncDecodeError() {
	decodeErrorsTotal.Inc()
}
