// Package metrics provides Prometheus metrics for the capture pipeline.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	FramesCaptured  prometheus.Counter
	AcquireTimeouts prometheus.Counter
	TargetLost      prometheus.Counter
	MatchesTotal    *prometheus.CounterVec
	OCRDuration     prometheus.Histogram
	StopTimeouts    *prometheus.CounterVec
	StateGauge      *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates the pipeline metrics and registers them on the registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.FramesCaptured = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaarbuddy_frames_captured_total",
			Help: "Total number of frames handed to the OCR stage.",
		},
	)
	m.AcquireTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaarbuddy_acquire_timeouts_total",
			Help: "Total number of capture attempts that produced no frame in time.",
		},
	)
	m.TargetLost = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaarbuddy_target_lost_total",
			Help: "Total number of transitions back to searching after the game window vanished.",
		},
	)
	m.MatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaarbuddy_matches_total",
			Help: "Total number of OCR passes partitioned by lookup outcome.",
		},
		[]string{"outcome"},
	)
	m.OCRDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bazaarbuddy_ocr_duration_seconds",
			Help:    "Time taken to extract text from a frame",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
	)
	m.StopTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaarbuddy_worker_stop_timeouts_total",
			Help: "Total number of workers that missed their stop grace period",
		},
		[]string{"worker"},
	)
	m.StateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bazaarbuddy_state",
			Help: "Current orchestrator state, 1 for the active state and 0 otherwise.",
		},
		[]string{"state"},
	)
}

// RecordMatch increments the match counter for the given outcome,
// "matched" or "unmatched".
func (m *Metrics) RecordMatch(outcome string) {
	m.MatchesTotal.WithLabelValues(outcome).Inc()
}

// RecordOCRDuration observes one OCR pass.
func (m *Metrics) RecordOCRDuration(d time.Duration) {
	m.OCRDuration.Observe(d.Seconds())
}

// SetState marks the active orchestrator state on the gauge.
func (m *Metrics) SetState(active string, all ...string) {
	for _, s := range all {
		v := 0.0
		if s == active {
			v = 1.0
		}
		m.StateGauge.WithLabelValues(s).Set(v)
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.FramesCaptured.Describe(ch)
	m.AcquireTimeouts.Describe(ch)
	m.TargetLost.Describe(ch)
	m.MatchesTotal.Describe(ch)
	m.OCRDuration.Describe(ch)
	m.StopTimeouts.Describe(ch)
	m.StateGauge.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.FramesCaptured.Collect(ch)
	m.AcquireTimeouts.Collect(ch)
	m.TargetLost.Collect(ch)
	m.MatchesTotal.Collect(ch)
	m.OCRDuration.Collect(ch)
	m.StopTimeouts.Collect(ch)
	m.StateGauge.Collect(ch)
}
