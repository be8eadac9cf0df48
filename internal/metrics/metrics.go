// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec
	sessionsPurged  prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayplan_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		storeOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dayplan_store_op_duration_seconds",
			Help:    "Document store operation latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dayplan_sessions_purged_total",
			Help: "Sessions destroyed by the duplicate-session purge.",
		}),
	}

	c.registry.MustRegister(c.httpRequests, c.storeOpDuration, c.sessionsPurged)
	return c
}

func (c *Collector) RecordRequest(route string, status int) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveStoreOp satisfies store.Observer.
func (c *Collector) ObserveStoreOp(op string, d time.Duration) {
	c.storeOpDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (c *Collector) RecordSessionsPurged(n int) {
	c.sessionsPurged.Add(float64(n))
}

// Handler serves the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
