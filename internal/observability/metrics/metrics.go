package metrics

import "github.com/prometheus/client_golang/prometheus"

// VisitMetrics exposes counters/histograms for the visit lifecycle.
type VisitMetrics struct {
	sweepRuns     *prometheus.CounterVec
	visitsFlagged prometheus.Counter
	flagFailures  prometheus.Counter
	acknowledged  prometheus.Counter
	sweepDuration prometheus.Histogram
}

func NewVisitMetrics(reg prometheus.Registerer) *VisitMetrics {
	m := &VisitMetrics{
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "visits",
			Name:      "sweep_runs_total",
			Help:      "Total missed-visit sweep passes",
		}, []string{"trigger"}),
		visitsFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "visits",
			Name:      "flagged_missed_total",
			Help:      "Total visits auto-flagged as missed",
		}),
		flagFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "visits",
			Name:      "flag_failures_total",
			Help:      "Total per-visit update failures during sweeps",
		}),
		acknowledged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "guardian",
			Subsystem: "visits",
			Name:      "alerts_acknowledged_total",
			Help:      "Total alert acknowledgements",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "guardian",
			Subsystem: "visits",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of missed-visit sweep passes",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sweepRuns, m.visitsFlagged, m.flagFailures, m.acknowledged, m.sweepDuration)
	return m
}

// ObserveSweep records one sweep pass. trigger is "api" or "worker".
func (m *VisitMetrics) ObserveSweep(trigger string, flagged, failed int, seconds float64) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(trigger).Inc()
	m.visitsFlagged.Add(float64(flagged))
	m.flagFailures.Add(float64(failed))
	m.sweepDuration.Observe(seconds)
}

func (m *VisitMetrics) ObserveAcknowledged() {
	if m == nil {
		return
	}
	m.acknowledged.Inc()
}
