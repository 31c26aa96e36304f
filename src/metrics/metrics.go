// Package metrics holds the Prometheus collectors for the fact-check pipeline
// and the HTTP layer. All methods are safe on a nil *Metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stake-plus/sentinel/src/logging"
)

const namespace = "sentinel"

type Metrics struct {
	// VerdictsTotal counts terminal verdicts by result and verifier stage.
	VerdictsTotal *prometheus.CounterVec
	// StageFailuresTotal counts absorbed upstream failures by stage and reason.
	StageFailuresTotal *prometheus.CounterVec
	VerifySeconds      prometheus.Histogram
	ClaimsExtracted    prometheus.Histogram
	TrustScore         prometheus.Histogram

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPSeconds       *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg builds unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VerdictsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verifier",
			Name:      "verdicts_total",
			Help:      "Verdicts produced, by result and terminal stage.",
		}, []string{"result", "stage"}),
		StageFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verifier",
			Name:      "stage_failures_total",
			Help:      "Upstream failures absorbed by the pipeline.",
		}, []string{"stage", "reason"}),
		VerifySeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "verifier",
			Name:      "claim_duration_seconds",
			Help:      "Time to reach a verdict for one claim.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}),
		ClaimsExtracted: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extractor",
			Name:      "claims",
			Help:      "Claims extracted per request.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
		}),
		TrustScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "trust_score",
			Help:      "Trust scores of assembled reports.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) ObserveVerdict(result, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.VerdictsTotal.WithLabelValues(result, stage).Inc()
	m.VerifySeconds.Observe(d.Seconds())
}

// StageFailure records an absorbed error, labelled by its classified reason.
func (m *Metrics) StageFailure(stage string, err error) {
	if m == nil {
		return
	}
	m.StageFailuresTotal.WithLabelValues(stage, logging.Reason(err)).Inc()
}

func (m *Metrics) ObserveClaims(n int) {
	if m == nil {
		return
	}
	m.ClaimsExtracted.Observe(float64(n))
}

func (m *Metrics) ObserveTrustScore(score float64) {
	if m == nil {
		return
	}
	m.TrustScore.Observe(score)
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPSeconds.WithLabelValues(route).Observe(d.Seconds())
}
