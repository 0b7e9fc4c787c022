// Package metrics exports Prometheus metrics for apikit clients.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lgc202/apikit/httpx"
	"github.com/lgc202/apikit/request"
)

// Collector holds the client metrics.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		// requests counts calls by method and HTTP status ("0" when no response)
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apikit_http_requests_total",
				Help: "Total HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apikit_http_request_duration_seconds",
				Help:    "HTTP round trip duration by method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		// outcomes counts interpreted results (success, binary, business, ...)
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apikit_responses_total",
				Help: "Total API responses by method and outcome",
			},
			[]string{"method", "kind"},
		),
	}
}

// AfterHook records every round trip.
func (c *Collector) AfterHook() httpx.AfterHook {
	return func(req *http.Request, resp *http.Response, err error, dur time.Duration) {
		status := "0"
		if err == nil && resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		c.requests.WithLabelValues(req.Method, status).Inc()
		c.duration.WithLabelValues(req.Method).Observe(dur.Seconds())
	}
}

// Observer records how each call was interpreted.
func (c *Collector) Observer() request.Observer {
	return func(method string, kind request.Kind) {
		c.outcomes.WithLabelValues(method, string(kind)).Inc()
	}
}

// Handler serves the metrics gathered by g (nil for the default gatherer).
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
