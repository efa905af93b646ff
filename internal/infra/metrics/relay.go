package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		relayLookupsTotal,
		relayUpstreamCallsTotal,
		relayUpstreamLatencyMs,
		relayLockWaitMs,
	)
}

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeBusy     = "busy"
	OutcomeError    = "error"
)

var (
	relayLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_lookups_total",
			Help: "Number lookups by outcome (found/not_found/invalid/busy/error).",
		},
		[]string{"outcome"},
	)

	relayUpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_upstream_calls_total",
			Help: "Bot API calls by method and success.",
		},
		[]string{"method", "success"},
	)

	relayUpstreamLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_upstream_latency_ms",
			Help:    "Bot API call latency distribution in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"method"},
	)

	relayLockWaitMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_lock_wait_ms",
			Help:    "Time spent waiting for the shared chat guard in milliseconds.",
			Buckets: []float64{1, 10, 100, 500, 1000, 3000, 5000, 10000},
		},
	)
)

func IncLookup(outcome string) {
	relayLookupsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveUpstream(method string, started time.Time, success bool) {
	relayUpstreamCallsTotal.WithLabelValues(method, strconv.FormatBool(success)).Inc()
	relayUpstreamLatencyMs.WithLabelValues(method).Observe(float64(time.Since(started).Milliseconds()))
}

func ObserveLockWait(d time.Duration) {
	relayLockWaitMs.Observe(float64(d.Milliseconds()))
}
