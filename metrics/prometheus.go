// Package metrics records contract operation, cache and remote lookup outcomes in a dedicated prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements cache.Observer and contractabi.LookupObserver, plus the operation counters updated by the
// engine. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	// Operation metrics
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	queueDepth        prometheus.Gauge

	// ABI metrics
	cacheHits     *prometheus.CounterVec
	cacheMisses   prometheus.Counter
	remoteLookups *prometheus.CounterVec

	// Transaction metrics
	transactionsSubmitted *prometheus.CounterVec
	gasUsed               prometheus.Counter
}

// NewRecorder creates a Recorder whose metrics are prefixed with namespace.
func NewRecorder(namespace string) *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,

		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of contract operations by kind and outcome",
			},
			[]string{"operation", "network", "outcome"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Time spent executing a contract operation, including queueing",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_depth",
				Help:      "Number of operations waiting for the engine worker",
			},
		),

		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "abi",
				Name:      "cache_hits_total",
				Help:      "Interface description cache hits by tier",
			},
			[]string{"tier"},
		),
		cacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "abi",
				Name:      "cache_misses_total",
				Help:      "Interface description lookups that missed every cache tier",
			},
		),
		remoteLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "abi",
				Name:      "remote_lookups_total",
				Help:      "Remote ABI service lookups by network and outcome",
			},
			[]string{"network", "outcome"},
		),

		transactionsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_submitted_total",
				Help:      "Transactions accepted by the RPC endpoint",
			},
			[]string{"network"},
		),
		gasUsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gas_used_total",
				Help:      "Gas used by confirmed transactions",
			},
		),
	}

	registry.MustRegister(
		r.operations,
		r.operationDuration,
		r.queueDepth,
		r.cacheHits,
		r.cacheMisses,
		r.remoteLookups,
		r.transactionsSubmitted,
		r.gasUsed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry holding every metric of this Recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// CacheHit records a hit in the named cache tier.
func (r *Recorder) CacheHit(tier string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(tier).Inc()
}

// CacheMiss records a lookup that missed every cache tier.
func (r *Recorder) CacheMiss() {
	if r == nil {
		return
	}
	r.cacheMisses.Inc()
}

// RemoteLookup records a remote ABI service lookup outcome.
func (r *Recorder) RemoteLookup(network string, outcome string) {
	if r == nil {
		return
	}
	r.remoteLookups.WithLabelValues(network, outcome).Inc()
}

// ObserveOperation records one finished operation.
func (r *Recorder) ObserveOperation(operation string, network string, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, network, outcome).Inc()
	r.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// QueueChanged adjusts the queue depth gauge by delta.
func (r *Recorder) QueueChanged(delta int) {
	if r == nil {
		return
	}
	r.queueDepth.Add(float64(delta))
}

// ObserveSubmission records a transaction accepted by the network and, once confirmed, the gas it used.
func (r *Recorder) ObserveSubmission(network string, gasUsed uint64) {
	if r == nil {
		return
	}
	r.transactionsSubmitted.WithLabelValues(network).Inc()
	r.gasUsed.Add(float64(gasUsed))
}
