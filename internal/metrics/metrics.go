package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records rejected calls, authentication failures and HTTP traffic.
// It satisfies locks.Recorder and auth.FailureRecorder.
type Collector struct {
	lockRejected     *prometheus.CounterVec
	throttleRejected *prometheus.CounterVec
	authFailed       *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	wsConnections    prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		lockRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_lock_rejected_total",
			Help: "Calls rejected because the lock was held.",
		}, []string{"name"}),
		throttleRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_throttle_rejected_total",
			Help: "Calls rejected by a throttle.",
		}, []string{"name"}),
		authFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_auth_failed_total",
			Help: "Failed authentications per token kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_http_requests_total",
			Help: "HTTP responses per route and status code.",
		}, []string{"route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notes_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notes_ws_connections",
			Help: "Open websocket connections.",
		}),
	}

	reg.MustRegister(
		c.lockRejected,
		c.throttleRejected,
		c.authFailed,
		c.httpRequests,
		c.httpLatency,
		c.wsConnections,
	)
	return c
}

func (c *Collector) LockRejected(name string) {
	c.lockRejected.WithLabelValues(name).Inc()
}

func (c *Collector) ThrottleRejected(name string) {
	c.throttleRejected.WithLabelValues(name).Inc()
}

func (c *Collector) AuthFailed(kind string) {
	c.authFailed.WithLabelValues(kind).Inc()
}

func (c *Collector) WSConnected() {
	c.wsConnections.Inc()
}

func (c *Collector) WSDisconnected() {
	c.wsConnections.Dec()
}

// Middleware records every request under its chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		c.httpLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
