// Package metrics exposes prometheus instruments for the prerequisite engine.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

const namespace = "learngrid"

// Cycle check outcomes.
const (
	ResultClear = "clear"
	ResultCycle = "cycle"
)

// Edge rejection reasons.
const (
	ReasonValidation = "validation"
	ReasonNotFound   = "not_found"
	ReasonConflict   = "conflict"
	ReasonCycle      = "cycle"
	ReasonStorage    = "storage"
)

// Metrics groups every instrument the service records.
type Metrics struct {
	cycleChecks         *prometheus.CounterVec
	edgesAdded          prometheus.Counter
	edgesRejected       *prometheus.CounterVec
	edgesRemoved        prometheus.Counter
	transitions         *prometheus.CounterVec
	transitionsRejected prometheus.Counter
	readiness           prometheus.Counter
	availability        prometheus.Histogram
}

// New registers the instruments on reg. Registering twice on the same
// registry panics, as with any prometheus collector.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cycleChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_checks_total",
			Help:      "Cycle checks performed, by outcome.",
		}, []string{"result"}),
		edgesAdded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prerequisites_added_total",
			Help:      "Prerequisite edges written to the store.",
		}),
		edgesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prerequisites_rejected_total",
			Help:      "Prerequisite insertions refused, by reason.",
		}, []string{"reason"}),
		edgesRemoved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prerequisites_removed_total",
			Help:      "Prerequisite edges deleted from the store.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Accepted workflow transitions, by target state.",
		}, []string{"state"}),
		transitionsRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_rejected_total",
			Help:      "Workflow transitions refused by the transition table or readiness.",
		}),
		readiness: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readiness_computations_total",
			Help:      "Readiness scores computed for a single node.",
		}),
		availability: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "availability_resolve_seconds",
			Help:      "Time spent resolving availability for a whole graph.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
}

// Discard returns instruments registered on a private registry that nobody
// scrapes.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) CycleChecked(hasCycle bool) {
	if hasCycle {
		m.cycleChecks.WithLabelValues(ResultCycle).Inc()
		return
	}
	m.cycleChecks.WithLabelValues(ResultClear).Inc()
}

func (m *Metrics) PrerequisiteAdded() { m.edgesAdded.Inc() }

func (m *Metrics) PrerequisiteRejected(reason string) {
	m.edgesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) PrerequisiteRemoved() { m.edgesRemoved.Inc() }

func (m *Metrics) Transitioned(to workflow.State) {
	m.transitions.WithLabelValues(strings.ToLower(to.String())).Inc()
}

func (m *Metrics) TransitionRejected() { m.transitionsRejected.Inc() }

func (m *Metrics) ReadinessComputed() { m.readiness.Inc() }

// AvailabilityResolved records how long a bulk resolution took, in seconds.
func (m *Metrics) AvailabilityResolved(seconds float64) {
	m.availability.Observe(seconds)
}

// Handler serves the gathered metrics in the prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
