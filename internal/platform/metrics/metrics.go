// Copyright (c) 2026 Craftly. All rights reserved.
// Author: eng@craftly.app

/*
Package metrics provides Prometheus instrumentation for the Craftly API.

It exposes a [Collector] that the HTTP layer and domain services record into,
plus the scrape handler mounted at /metrics.

Recorded Signals:

  - HTTP traffic: request counts and latency, labeled by method/route/status.
  - Quota engine: credits deducted and quota rejections.
  - Publication lifecycle: publish/unpublish transitions.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface domain services use to record business metrics.
// Defined here so services can be tested with a no-op implementation.
type Recorder interface {
	RecordCreditsDeducted(action string, amount int)
	RecordQuotaRejection()
	RecordPublishTransition(public bool)
	RecordLikeToggle(liked bool)
}

// Collector implements [Recorder] backed by Prometheus primitives.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	creditsDeducted *prometheus.CounterVec
	quotaRejections prometheus.Counter
	publishTotal    prometheus.Counter
	unpublishTotal  prometheus.Counter
	likeToggleTotal *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftly_http_requests_total",
			Help: "Total HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "craftly_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		creditsDeducted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftly_credits_deducted_total",
			Help: "Total credits deducted from daily quotas, by action.",
		}, []string{"action"}),
		quotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftly_quota_rejections_total",
			Help: "Total requests rejected with 402 due to an exhausted daily quota.",
		}),
		publishTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftly_components_published_total",
			Help: "Total private-to-public component transitions.",
		}),
		unpublishTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftly_components_unpublished_total",
			Help: "Total public-to-private component transitions.",
		}),
		likeToggleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftly_like_toggles_total",
			Help: "Total like toggles, by resulting state.",
		}, []string{"state"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.creditsDeducted,
		c.quotaRejections,
		c.publishTotal,
		c.unpublishTotal,
		c.likeToggleTotal,
	)

	return c
}

// RecordHTTPRequest records one finished HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCreditsDeducted records a successful quota deduction.
func (c *Collector) RecordCreditsDeducted(action string, amount int) {
	c.creditsDeducted.WithLabelValues(action).Add(float64(amount))
}

// RecordQuotaRejection records a request rejected for insufficient credits.
func (c *Collector) RecordQuotaRejection() {
	c.quotaRejections.Inc()
}

// RecordPublishTransition records a visibility transition.
func (c *Collector) RecordPublishTransition(public bool) {
	if public {
		c.publishTotal.Inc()
		return
	}
	c.unpublishTotal.Inc()
}

// RecordLikeToggle records a like toggle by its resulting state.
func (c *Collector) RecordLikeToggle(liked bool) {
	state := "unliked"
	if liked {
		state = "liked"
	}
	c.likeToggleTotal.WithLabelValues(state).Inc()
}

// # HTTP Integration

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// Instrument is middleware that records request counts and latency.
//
// The route label uses the raw URL path trimmed of trailing identifiers only
// at mount time; chi route patterns are not available before routing, so this
// middleware should be mounted per-router where the pattern is stable.
func (c *Collector) Instrument(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrappedWriter, request)

			c.RecordHTTPRequest(request.Method, route, wrappedWriter.status, time.Since(startTime))
		})
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopRecorder is a [Recorder] that discards all measurements. Used in tests.
type NopRecorder struct{}

func (NopRecorder) RecordCreditsDeducted(string, int) {}
func (NopRecorder) RecordQuotaRejection()             {}
func (NopRecorder) RecordPublishTransition(bool)      {}
func (NopRecorder) RecordLikeToggle(bool)             {}
