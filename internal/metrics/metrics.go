// Package metrics exposes rdbx's operational counters and latency
// histogram through github.com/prometheus/client_golang, per
// SPEC_FULL.md's domain-stack expansion.
//
// Grounded on the teacher's benchmark.go, which times every workload
// operation by hand into a slice of durations; here the same
// measurements are recorded as standard Prometheus collectors instead,
// registered once at package init against the default registry so
// cmd/rdbx can optionally serve them over HTTP.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SetsTotal counts successful Set calls.
	SetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdbx_sets_total",
		Help: "Total number of successful Set operations.",
	})

	// GetsTotal counts successful Get calls (key found or not).
	GetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdbx_gets_total",
		Help: "Total number of successful Get operations.",
	})

	// SplitsTotal counts B-tree node splits, including root growth.
	SplitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdbx_splits_total",
		Help: "Total number of B-tree node splits.",
	})

	// PagesAllocatedTotal counts pages handed out by the pager.
	PagesAllocatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdbx_pages_allocated_total",
		Help: "Total number of pages allocated by the pager.",
	})

	opDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rdbx_op_duration_seconds",
		Help:    "Latency of database operations, by name and outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "outcome"})
)

// ObserveOp records how long an operation that started at start took,
// labeled by op name and outcome. Callers defer a closure so err (a
// named return value) is read after the wrapped call returns:
//
//	func (db *Database) Set(key, value string) (err error) {
//		start := time.Now()
//		defer func() { metrics.ObserveOp("set", err, start) }()
//		...
//	}
func ObserveOp(op string, err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	opDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

// Handler returns the standard Prometheus exposition HTTP handler, for
// callers that want to serve /metrics themselves.
func Handler() http.Handler {
	return promhttp.Handler()
}
