package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/learngrid/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CycleChecked(true)
	m.CycleChecked(false)
	m.CycleChecked(false)
	m.PrerequisiteAdded()
	m.PrerequisiteRejected(ReasonConflict)
	m.PrerequisiteRejected(ReasonCycle)
	m.PrerequisiteRejected(ReasonCycle)
	m.PrerequisiteRemoved()
	m.Transitioned(workflow.MasteryTesting)
	m.TransitionRejected()
	m.ReadinessComputed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycleChecks.WithLabelValues(ResultCycle)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycleChecks.WithLabelValues(ResultClear)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.edgesAdded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.edgesRejected.WithLabelValues(ReasonCycle)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.edgesRejected.WithLabelValues(ReasonConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.edgesRemoved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("mastery_testing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionsRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.readiness))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.PrerequisiteAdded()
	m.AvailabilityResolved(0.002)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "learngrid_prerequisites_added_total 1"), body)
	assert.Contains(t, body, "learngrid_availability_resolve_seconds_count 1")
}

func TestDiscardIsIndependent(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().PrerequisiteAdded()
		Discard().PrerequisiteAdded()
	})
}
