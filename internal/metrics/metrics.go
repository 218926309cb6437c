// Package metrics exports relay and batch telemetry to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eleven-am/transcribe-relay/internal/batch"
)

const namespace = "transcribe_relay"

// Metrics implements relay.Observer and batch.Observer.
type Metrics struct {
	connectionsActive *prometheus.GaugeVec
	connectionsTotal  *prometheus.CounterVec
	closesTotal       *prometheus.CounterVec
	lifetime          *prometheus.HistogramVec
	queuedPayloads    *prometheus.CounterVec
	queuedBytes       *prometheus.HistogramVec
	upstreamReady     *prometheus.HistogramVec
	batchPolls        *prometheus.CounterVec
	batchJobs         *prometheus.CounterVec
	batchDuration     *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectionsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connections_active",
				Help:      "Number of relay connections currently open",
			},
			[]string{"provider"},
		),
		connectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connections_total",
				Help:      "Total relay connections opened",
			},
			[]string{"provider"},
		),
		closesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_closes_total",
				Help:      "Relay teardowns by close reason",
			},
			[]string{"provider", "reason"},
		),
		lifetime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "connection_lifetime_seconds",
				Help:      "Lifetime of relay connections in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
			},
			[]string{"provider"},
		),
		queuedPayloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queued_payloads_total",
				Help:      "Payloads buffered while the upstream was not ready",
			},
			[]string{"provider", "kind"},
		),
		queuedBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "queued_payload_bytes",
				Help:      "Size of payloads buffered while the upstream was not ready",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"provider"},
		),
		upstreamReady: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_ready_seconds",
				Help:      "Time from connection creation until the upstream handshake completed",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"provider"},
		),
		batchPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_polls_total",
				Help:      "Status polls issued against batch vendors",
			},
			[]string{"provider"},
		),
		batchJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_jobs_total",
				Help:      "Finished batch jobs by final status",
			},
			[]string{"provider", "status"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_job_duration_seconds",
				Help:      "End to end duration of batch jobs in seconds",
				Buckets:   []float64{1, 3, 10, 30, 60, 120, 300, 600},
			},
			[]string{"provider"},
		),
	}

	reg.MustRegister(
		m.connectionsActive,
		m.connectionsTotal,
		m.closesTotal,
		m.lifetime,
		m.queuedPayloads,
		m.queuedBytes,
		m.upstreamReady,
		m.batchPolls,
		m.batchJobs,
		m.batchDuration,
	)
	return m
}

func (m *Metrics) ConnectionOpened(provider string) {
	m.connectionsActive.WithLabelValues(provider).Inc()
	m.connectionsTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) ConnectionClosed(provider, reason string, lifetime time.Duration) {
	m.connectionsActive.WithLabelValues(provider).Dec()
	m.closesTotal.WithLabelValues(provider, reason).Inc()
	m.lifetime.WithLabelValues(provider).Observe(lifetime.Seconds())
}

func (m *Metrics) PayloadQueued(provider string, control bool, size int) {
	kind := "data"
	if control {
		kind = "control"
	}
	m.queuedPayloads.WithLabelValues(provider, kind).Inc()
	m.queuedBytes.WithLabelValues(provider).Observe(float64(size))
}

func (m *Metrics) UpstreamReady(provider string, wait time.Duration) {
	m.upstreamReady.WithLabelValues(provider).Observe(wait.Seconds())
}

func (m *Metrics) JobPolled(provider string) {
	m.batchPolls.WithLabelValues(provider).Inc()
}

func (m *Metrics) JobFinished(provider string, status batch.Status, elapsed time.Duration) {
	m.batchJobs.WithLabelValues(provider, string(status)).Inc()
	m.batchDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
