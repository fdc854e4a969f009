// Package telemetry provides Prometheus metrics instrumentation for the
// forecasting engine's internal machinery: optimizer convergence behavior,
// the group-by operator's worker coordination, cross-validation fold
// outcomes, and gradient-checkpoint replay frequency. None of this sits on
// the hot path of a single Forecast call; it is wired for cmd/enginediag and
// any host that chooses to register it.
//
// Metrics exposed:
//   - tsforge_optimizer_iterations: Histogram of L-BFGS-B iterations to converge
//   - tsforge_optimizer_failures_total: Counter of optimizer non-convergence
//   - tsforge_groupop_slot_contention_seconds: Histogram of Finalize spin-wait time
//   - tsforge_groupop_groups_processed_total: Counter of groups emitted
//   - tsforge_cv_fold_duration_seconds: Histogram of per-fold fit+forecast time
//   - tsforge_cv_fold_failures_total: Counter of fold failures
//   - tsforge_checkpoint_replays_total: Counter of gradient-checkpoint segment replays
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the engine registers.
type Metrics struct {
	OptimizerIterations       prometheus.Histogram
	OptimizerFailuresTotal    *prometheus.CounterVec
	GroupopSlotContentionSecs prometheus.Histogram
	GroupopGroupsProcessed    prometheus.Counter
	CVFoldDurationSeconds     prometheus.Histogram
	CVFoldFailuresTotal       *prometheus.CounterVec
	CheckpointReplaysTotal    prometheus.Counter
}

// New creates and registers every metric under the given registerer. Pass
// prometheus.DefaultRegisterer for a process-wide singleton, or a fresh
// prometheus.NewRegistry() in tests to avoid collector-already-registered
// panics across test runs.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OptimizerIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsforge_optimizer_iterations",
			Help:    "Iterations taken by the L-BFGS-B optimizer to converge or give up",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}),
		OptimizerFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tsforge_optimizer_failures_total",
			Help: "Optimizer runs that failed to converge, by reason",
		}, []string{"reason"}),
		GroupopSlotContentionSecs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsforge_groupop_slot_contention_seconds",
			Help:    "Time a Finalize caller spent spin-waiting for other workers to finish collecting",
			Buckets: prometheus.DefBuckets,
		}),
		GroupopGroupsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "tsforge_groupop_groups_processed_total",
			Help: "Groups emitted by a ts_forecast_by-style streaming operator",
		}),
		CVFoldDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsforge_cv_fold_duration_seconds",
			Help:    "Time spent fitting and forecasting a single backtest fold",
			Buckets: prometheus.DefBuckets,
		}),
		CVFoldFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tsforge_cv_fold_failures_total",
			Help: "Backtest folds that failed to fit or forecast, by model",
		}, []string{"model"}),
		CheckpointReplaysTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tsforge_checkpoint_replays_total",
			Help: "Gradient-checkpoint segments replayed during an ETS backward pass",
		}),
	}
}

// RecordOptimizerRun records one optimizer run's outcome.
func (m *Metrics) RecordOptimizerRun(iterations int, converged bool, failureReason string) {
	m.OptimizerIterations.Observe(float64(iterations))
	if !converged {
		m.OptimizerFailuresTotal.WithLabelValues(failureReason).Inc()
	}
}

// RecordSlotContention records how long a Finalize caller spin-waited.
func (m *Metrics) RecordSlotContention(seconds float64) {
	m.GroupopSlotContentionSecs.Observe(seconds)
}

// RecordGroupsProcessed increments the processed-group counter by n.
func (m *Metrics) RecordGroupsProcessed(n int) {
	m.GroupopGroupsProcessed.Add(float64(n))
}

// RecordFold records one backtest fold's duration and outcome.
func (m *Metrics) RecordFold(model string, seconds float64, err error) {
	m.CVFoldDurationSeconds.Observe(seconds)
	if err != nil {
		m.CVFoldFailuresTotal.WithLabelValues(model).Inc()
	}
}

// RecordCheckpointReplay increments the checkpoint-replay counter.
func (m *Metrics) RecordCheckpointReplay() {
	m.CheckpointReplaysTotal.Inc()
}
