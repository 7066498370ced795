package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use through a nil pointer; every method becomes a no-op.
type Metrics struct {
	ViolationsEmitted   *prometheus.CounterVec
	CandidatesThrottled *prometheus.CounterVec
	Terminations        *prometheus.CounterVec
	Submissions         *prometheus.CounterVec
	DetectorErrors      prometheus.Counter
	DetectionLatency    prometheus.Histogram
	SamplerTicksSkipped *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
	SinkFailures        *prometheus.CounterVec
	SinkEventsDropped   prometheus.Counter
	SinkCircuitOpen     *prometheus.GaugeVec
}

// New registers the proctoring metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ViolationsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_violations_emitted_total",
			Help: "Violations emitted after throttling, labeled by type and severity",
		}, []string{"type", "severity"}),
		CandidatesThrottled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_candidates_throttled_total",
			Help: "Candidate violations dropped by the per-type throttle",
		}, []string{"type"}),
		Terminations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_terminations_total",
			Help: "Sessions terminated by policy, labeled by reason",
		}, []string{"reason"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_submissions_total",
			Help: "Submission attempts, labeled by kind and outcome",
		}, []string{"kind", "outcome"}),
		DetectorErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "proctor_face_detector_errors_total",
			Help: "Face detection calls that failed and were replaced by an optimistic reading",
		}),
		DetectionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "proctor_face_detection_duration_seconds",
			Help:    "Latency of face detection calls",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
		SamplerTicksSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_sampler_ticks_skipped_total",
			Help: "Sampler ticks dropped because the previous sample was still running",
		}, []string{"sampler"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "proctor_active_sessions",
			Help: "Sessions currently being proctored",
		}),
		SinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_violation_sink_failures_total",
			Help: "Violation telemetry writes that failed, labeled by sink",
		}, []string{"sink"}),
		SinkEventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "proctor_violation_sink_dropped_total",
			Help: "Violation telemetry events dropped because the publish buffer was full",
		}),
		SinkCircuitOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "proctor_violation_sink_circuit_open",
			Help: "1 while the sink's circuit breaker is skipping writes",
		}, []string{"sink"}),
	}
}

func (m *Metrics) IncrementViolation(violationType, severity string) {
	if m == nil {
		return
	}
	m.ViolationsEmitted.WithLabelValues(violationType, severity).Inc()
}

func (m *Metrics) IncrementThrottled(violationType string) {
	if m == nil {
		return
	}
	m.CandidatesThrottled.WithLabelValues(violationType).Inc()
}

func (m *Metrics) IncrementTermination(reason string) {
	if m == nil {
		return
	}
	m.Terminations.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementSubmission(kind, outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncrementDetectorErrors() {
	if m == nil {
		return
	}
	m.DetectorErrors.Inc()
}

func (m *Metrics) ObserveDetection(d time.Duration) {
	if m == nil {
		return
	}
	m.DetectionLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementSkippedTick(sampler string) {
	if m == nil {
		return
	}
	m.SamplerTicksSkipped.WithLabelValues(sampler).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) IncrementSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncrementSinkDropped() {
	if m == nil {
		return
	}
	m.SinkEventsDropped.Inc()
}

func (m *Metrics) SetSinkCircuitOpen(sink string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.SinkCircuitOpen.WithLabelValues(sink).Set(v)
}
