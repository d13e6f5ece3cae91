package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the process metrics and the collectors built on them
type Registry struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	rateLimited       prometheus.Counter
	eventsPublished   prometheus.Counter
	eventsProcessed   *prometheus.CounterVec
	transitionsStored prometheus.Counter
}

// New creates a registry with Go runtime and process collectors attached
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Provider API calls by endpoint and status code; code 0 is a transport failure.",
		}, []string{"endpoint", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Provider API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_blocks_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		eventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_events_published_total",
			Help:      "Status events published by the poller.",
		}),
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_events_processed_total",
			Help:      "Status events handled by the consumer pool, by outcome.",
		}, []string{"outcome"}),
		transitionsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_stored_total",
			Help:      "Status transitions written to history.",
		}),
	}

	reg.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.upstreamRequests,
		r.upstreamDuration,
		r.rateLimited,
		r.eventsPublished,
		r.eventsProcessed,
		r.transitionsStored,
	)

	return r
}

// Gatherer exposes the underlying registry, mostly for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency per matched route
func (r *Registry) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpstream records one provider call
func (r *Registry) ObserveUpstream(endpoint string, statusCode int, d time.Duration) {
	r.upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	r.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (r *Registry) RateLimited() {
	r.rateLimited.Inc()
}

func (r *Registry) EventPublished() {
	r.eventsPublished.Inc()
}

// EventProcessed counts one consumed event; outcome is ack, requeue or drop
func (r *Registry) EventProcessed(outcome string) {
	r.eventsProcessed.WithLabelValues(outcome).Inc()
}

func (r *Registry) TransitionStored() {
	r.transitionsStored.Inc()
}
