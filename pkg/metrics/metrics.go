// Package metrics exposes Prometheus collectors for the HTTP layer and the
// rotation engine.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rotation"

// Rotation outcomes
const (
	OutcomeOK          = "ok"
	OutcomeNoWeeks     = "no_weeks"
	OutcomeMissingList = "missing_list"
	OutcomeError       = "error"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	rotations *prometheus.CounterVec
	relaxed   *prometheus.CounterVec
	weeks     prometheus.Histogram
	fairness  prometheus.Histogram
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Rotation runs by outcome.",
		}, []string{"outcome"}),
		relaxed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "relaxations_total",
			Help:      "Slots filled after relaxing constraints, by tier.",
		}, []string{"tier"}),
		weeks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "weeks_per_run",
			Help:      "Weeks filled per rotation run.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10), // 1, 3, ..., 19
		}),
		fairness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "fairness_score",
			Help:      "Fairness score of each successful run.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0, 10, ..., 100
		}),
	}
	reg.MustRegister(
		m.requests, m.latency, m.rotations, m.relaxed, m.weeks, m.fairness,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware counts and times every request by its route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveRotation records the outcome of one engine run
func (m *Metrics) ObserveRotation(res *scheduler.Result, err error) {
	if m == nil {
		return
	}
	switch {
	case errors.Is(err, scheduler.ErrMissingRequiredList):
		m.rotations.WithLabelValues(OutcomeMissingList).Inc()
		return
	case err != nil:
		m.rotations.WithLabelValues(OutcomeError).Inc()
		return
	case res.NoWeeks:
		m.rotations.WithLabelValues(OutcomeNoWeeks).Inc()
		return
	}

	m.rotations.WithLabelValues(OutcomeOK).Inc()
	m.weeks.Observe(float64(len(res.Weeks)))
	m.fairness.Observe(res.FairnessScore)
	for _, w := range res.Warnings {
		if w.Kind == models.WarningConstraintRelaxed {
			m.relaxed.WithLabelValues(w.Tier).Inc()
		}
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
