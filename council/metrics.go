package council

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for deliberation runs.
//
// Exposed metrics (namespaced "council_"):
//   - model_calls_total{stage, outcome}: settled model calls, outcome
//     "ok" or "error"
//   - stage_duration_seconds{stage}: histogram of stage wall time,
//     dispatch to join
//   - invalid_rankings_total: peer-review submissions dropped at parse
//   - runs_total{outcome}: finished runs, outcome "ok", "degraded"
//     (empty aggregate), "no_responses", "synthesis_failed", "cancelled"
//
// All methods are nil-safe so metrics stay optional in the Council.
type Metrics struct {
	modelCalls      *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	invalidRankings prometheus.Counter
	runs            *prometheus.CounterVec
}

// NewMetrics registers the council metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		modelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "council_model_calls_total",
			Help: "Settled model calls by stage and outcome.",
		}, []string{"stage", "outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "council_stage_duration_seconds",
			Help:    "Wall time per stage, dispatch to join.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		invalidRankings: factory.NewCounter(prometheus.CounterOpts{
			Name: "council_invalid_rankings_total",
			Help: "Peer-review submissions dropped as unparseable.",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "council_runs_total",
			Help: "Finished deliberation runs by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeCall(stage string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.modelCalls.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) observeInvalidRanking() {
	if m == nil {
		return
	}
	m.invalidRankings.Inc()
}

func (m *Metrics) observeRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}
