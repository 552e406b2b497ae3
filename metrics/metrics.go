// Package metrics provides Prometheus metrics for zping.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "zping"
)

// Metrics counts what the prober does on the wire.
type Metrics struct {
	ProbesSent       *prometheus.CounterVec
	RepliesMatched   *prometheus.CounterVec
	ProbeTimeouts    *prometheus.CounterVec
	SendErrors       prometheus.Counter
	PacketsDiscarded prometheus.Counter
	SlotsInUse       prometheus.Gauge
	ProbeDuration    prometheus.Histogram
}

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// Default returns the process-wide metrics instance.
func Default() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = NewWithRegistry(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewWithRegistry creates a Metrics instance registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProbesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_sent_total",
			Help:      "Total probe requests sent, by probe kind",
		}, []string{"kind"}),
		RepliesMatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_matched_total",
			Help:      "Total replies matched to an outstanding probe, by probe kind",
		}, []string{"kind"}),
		ProbeTimeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_timeouts_total",
			Help:      "Total probes that saw no matching reply in time, by probe kind",
		}, []string{"kind"}),
		SendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Total socket send failures",
		}),
		PacketsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_discarded_total",
			Help:      "Total inbound packets dropped as unmatched or malformed",
		}),
		SlotsInUse: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slots_in_use",
			Help:      "Probe slots currently leased",
		}),
		ProbeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Histogram of probe round-trip time for matched replies",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
}

// RecordSend records one probe put on the wire.
func (m *Metrics) RecordSend(kind string) {
	m.ProbesSent.WithLabelValues(kind).Inc()
}

// RecordReply records a matched reply and its round-trip time.
func (m *Metrics) RecordReply(kind string, rttSeconds float64) {
	m.RepliesMatched.WithLabelValues(kind).Inc()
	m.ProbeDuration.Observe(rttSeconds)
}

// RecordTimeout records a probe that expired unanswered.
func (m *Metrics) RecordTimeout(kind string) {
	m.ProbeTimeouts.WithLabelValues(kind).Inc()
}

// RecordSendError records a socket send failure.
func (m *Metrics) RecordSendError() {
	m.SendErrors.Inc()
}

// RecordDiscard records an inbound packet nobody was waiting for.
func (m *Metrics) RecordDiscard() {
	m.PacketsDiscarded.Inc()
}
