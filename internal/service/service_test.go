package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/availability"
	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/duckdbstore"
	"github.com/specialistvlad/learngrid/internal/inmemorystore"
	"github.com/specialistvlad/learngrid/internal/inmemorytopology"
	"github.com/specialistvlad/learngrid/internal/metrics"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/topologystore"
	"github.com/specialistvlad/learngrid/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	plato     = node.Node{ID: nodeid.Lecture("plato"), Label: "Plato", Category: "ancient", Order: 1}
	aristotle = node.Node{ID: nodeid.Lecture("aristotle"), Label: "Aristotle", Category: "ancient", Order: 2}
	augustine = node.Node{ID: nodeid.Lecture("augustine"), Label: "Augustine", Category: "medieval", Order: 1}
)

type backend struct {
	name string
	open func(t *testing.T) (topologystore.Store, progressstore.Store)
}

var backends = []backend{
	{
		name: "memory",
		open: func(t *testing.T) (topologystore.Store, progressstore.Store) {
			return inmemorytopology.New(), inmemorystore.New()
		},
	},
	{
		name: "duckdb",
		open: func(t *testing.T) (topologystore.Store, progressstore.Store) {
			s, err := duckdbstore.Open(context.Background(), "")
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s, s
		},
	},
}

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), ctxlog.Discard())
}

// newService returns a service seeded with plato, aristotle and augustine and
// the learner "ada".
func newService(t *testing.T, b backend, m *metrics.Metrics) *Service {
	t.Helper()
	topo, prog := b.open(t)
	svc, err := New(topo, prog, m, DefaultConfig())
	require.NoError(t, err)

	ctx := testContext()
	for _, n := range []node.Node{plato, aristotle, augustine} {
		require.NoError(t, svc.AddNode(ctx, n))
	}
	require.NoError(t, svc.RegisterLearner(ctx, "ada"))
	return svc
}

func forEachBackend(t *testing.T, fn func(t *testing.T, b backend)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) { fn(t, b) })
	}
}

func TestReadinessScenarios(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		// Augustine requires Plato and Aristotle; the learner mastered both.
		_, err := svc.AddPrerequisite(ctx, augustine.ID, plato.ID, true, 3)
		require.NoError(t, err)
		_, err = svc.AddPrerequisite(ctx, augustine.ID, aristotle.ID, true, 3)
		require.NoError(t, err)
		for _, id := range []nodeid.Address{plato.ID, aristotle.ID} {
			_, err := svc.ImportProgress(ctx, progressstore.Record{LearnerID: "ada", NodeID: id, State: workflow.Mastered})
			require.NoError(t, err)
		}

		res, err := svc.ComputeReadiness(ctx, augustine.ID, "ada")
		require.NoError(t, err)
		assert.True(t, res.Satisfied)
		assert.Equal(t, 100.0, res.Score)

		// Aristotle requires Plato; a second learner has not mastered Plato.
		require.NoError(t, svc.RegisterLearner(ctx, "bob"))
		_, err = svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
		require.NoError(t, err)

		res, err = svc.ComputeReadiness(ctx, aristotle.ID, "bob")
		require.NoError(t, err)
		assert.False(t, res.Satisfied)
		assert.Equal(t, 30.0, res.Score)
		require.Len(t, res.MissingRequired, 1)
		assert.Equal(t, plato.ID, res.MissingRequired[0].Prerequisite)

		// No prerequisites at all.
		res, err = svc.ComputeReadiness(ctx, plato.ID, "bob")
		require.NoError(t, err)
		assert.True(t, res.Satisfied)
		assert.Equal(t, 100.0, res.Score)
	})
}

func TestComputeReadiness_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.ComputeReadiness(ctx, nodeid.Lecture("socrates"), "ada")
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = svc.ComputeReadiness(ctx, plato.ID, "nobody")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestAddPrerequisite_CycleRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.AddPrerequisite(ctx, augustine.ID, plato.ID, true, 3)
		require.NoError(t, err)

		report, err := svc.CheckCycle(ctx, plato.ID, augustine.ID)
		require.NoError(t, err)
		assert.True(t, report.HasCycle)
		assert.Equal(t, []nodeid.Address{augustine.ID, plato.ID}, report.Path)
		assert.Equal(t, []string{"Augustine (lecture.augustine)", "Plato (lecture.plato)"}, report.Labels)

		_, err = svc.AddPrerequisite(ctx, plato.ID, augustine.ID, true, 3)
		require.Error(t, err)
		var cycleErr *apperr.CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, report.Labels, cycleErr.Path)

		// Nothing was written.
		path, err := svc.BuildLearningPath(ctx, plato.ID)
		require.NoError(t, err)
		assert.Len(t, path, 1)
	})
}

func TestAddPrerequisite_SelfReference(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		report, err := svc.CheckCycle(ctx, plato.ID, plato.ID)
		require.NoError(t, err)
		assert.True(t, report.HasCycle)

		_, err = svc.AddPrerequisite(ctx, plato.ID, plato.ID, true, 3)
		var cycleErr *apperr.CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"Plato (lecture.plato)", "Plato (lecture.plato)"}, cycleErr.Path)
	})
}

func TestAddPrerequisite_Conflict(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		first, err := svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
		require.NoError(t, err)
		assert.NotEmpty(t, first.ID)

		_, err = svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, false, 1)
		var conflict *apperr.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, first.ID, conflict.ExistingEdgeID)
	})
}

func TestAddPrerequisite_Validation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 9)
		assert.ErrorIs(t, err, apperr.ErrValidation)

		_, err = svc.AddPrerequisite(ctx, aristotle.ID, nodeid.Lecture("socrates"), true, 3)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = svc.CheckCycle(ctx, nodeid.Lecture("socrates"), plato.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestAddPrerequisite_ConcurrentOppositeEdges(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		for round := 0; round < 20; round++ {
			var wg sync.WaitGroup
			errs := make([]error, 2)
			edges := make([]node.Edge, 2)
			wg.Add(2)
			go func() {
				defer wg.Done()
				edges[0], errs[0] = svc.AddPrerequisite(ctx, aristotle.ID, augustine.ID, true, 3)
			}()
			go func() {
				defer wg.Done()
				edges[1], errs[1] = svc.AddPrerequisite(ctx, augustine.ID, aristotle.ID, true, 3)
			}()
			wg.Wait()

			succeeded := 0
			for i, err := range errs {
				if err == nil {
					succeeded++
					require.NoError(t, svc.RemovePrerequisite(ctx, edges[i].ID))
				} else {
					assert.ErrorIs(t, err, apperr.ErrCircularDependency)
				}
			}
			require.Equal(t, 1, succeeded, "round %d", round)
		}
	})
}

func TestRemovePrerequisite(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		e, err := svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
		require.NoError(t, err)
		require.NoError(t, svc.RemovePrerequisite(ctx, e.ID))
		assert.ErrorIs(t, svc.RemovePrerequisite(ctx, e.ID), apperr.ErrNotFound)

		// The reverse edge is now allowed.
		_, err = svc.AddPrerequisite(ctx, plato.ID, aristotle.ID, true, 3)
		require.NoError(t, err)
	})
}

func TestBuildLearningPath(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.AddPrerequisite(ctx, augustine.ID, aristotle.ID, true, 3)
		require.NoError(t, err)
		_, err = svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
		require.NoError(t, err)

		path, err := svc.BuildLearningPath(ctx, augustine.ID)
		require.NoError(t, err)
		assert.Equal(t, []node.Node{plato, aristotle, augustine}, path)

		_, err = svc.BuildLearningPath(ctx, nodeid.Entity("nothing"))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestAdvance_FullWorkflow(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
		require.NoError(t, err)

		// Unlocking aristotle fails while plato is not mastered, but creates the record.
		rec, err := svc.Advance(ctx, "ada", aristotle.ID, workflow.Ready)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Contains(t, err.Error(), "lecture.plato")
		assert.Equal(t, workflow.Locked, rec.State)

		// Work through plato.
		for _, next := range []workflow.State{
			workflow.Ready, workflow.Started, workflow.Watched,
			workflow.InitialReflection, workflow.MasteryTesting,
		} {
			rec, err := svc.Advance(ctx, "ada", plato.ID, next)
			require.NoError(t, err, "advancing to %s", next)
			assert.Equal(t, next, rec.State)
		}

		rec, err = svc.RecordMasteryScore(ctx, "ada", plato.ID, 55)
		require.NoError(t, err)
		assert.Equal(t, workflow.InitialReflection, rec.State)

		_, err = svc.Advance(ctx, "ada", plato.ID, workflow.MasteryTesting)
		require.NoError(t, err)
		rec, err = svc.RecordMasteryScore(ctx, "ada", plato.ID, 70)
		require.NoError(t, err)
		assert.Equal(t, workflow.Mastered, rec.State)
		assert.Empty(t, svc.NextWorkflowStates(rec.State))

		// Now aristotle unlocks.
		rec, err = svc.Advance(ctx, "ada", aristotle.ID, workflow.Ready)
		require.NoError(t, err)
		assert.Equal(t, workflow.Ready, rec.State)
	})
}

func TestAdvance_InvalidTransition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		rec, err := svc.Advance(ctx, "ada", plato.ID, workflow.Watched)
		require.Error(t, err)
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, workflow.Locked, rec.State)

		_, err = svc.RecordMasteryScore(ctx, "ada", plato.ID, 100)
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

		_, err = svc.Advance(ctx, "nobody", plato.ID, workflow.Ready)
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = svc.Advance(ctx, "ada", nodeid.Lecture("socrates"), workflow.Started)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestRecordMasteryScore_OutOfRange(t *testing.T) {
	ctx := testContext()
	svc := newService(t, backends[0], nil)
	for _, next := range []workflow.State{
		workflow.Ready, workflow.Started, workflow.Watched,
		workflow.InitialReflection, workflow.MasteryTesting,
	} {
		_, err := svc.Advance(ctx, "ada", plato.ID, next)
		require.NoError(t, err)
	}

	for _, score := range []float64{140, -5, math.NaN()} {
		rec, err := svc.RecordMasteryScore(ctx, "ada", plato.ID, score)
		assert.ErrorIs(t, err, apperr.ErrValidation, "score %v", score)
		assert.Equal(t, workflow.MasteryTesting, rec.State, "score %v", score)
	}
}

func TestListAvailabilityAndSuggestions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
		require.NoError(t, err)
		_, err = svc.AddPrerequisite(ctx, augustine.ID, aristotle.ID, true, 3)
		require.NoError(t, err)
		_, err = svc.ImportProgress(ctx, progressstore.Record{LearnerID: "ada", NodeID: plato.ID, State: workflow.Mastered})
		require.NoError(t, err)

		results, err := svc.ListAvailability(ctx, "ada", "")
		require.NoError(t, err)
		status := map[nodeid.Address]availability.Status{}
		for _, r := range results {
			status[r.Node.ID] = r.Status
		}
		assert.Equal(t, map[nodeid.Address]availability.Status{
			plato.ID:     availability.Completed,
			aristotle.ID: availability.Available,
			augustine.ID: availability.Locked,
		}, status)

		medieval, err := svc.ListAvailability(ctx, "ada", "medieval")
		require.NoError(t, err)
		require.Len(t, medieval, 1)
		assert.Equal(t, augustine.ID, medieval[0].Node.ID)

		suggestions, err := svc.Suggestions(ctx, "ada", 5)
		require.NoError(t, err)
		require.Len(t, suggestions, 1)
		assert.Equal(t, aristotle.ID, suggestions[0].Node.ID)
		assert.True(t, suggestions[0].IsAvailable)

		_, err = svc.ListAvailability(ctx, "nobody", "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestResolveAvailability(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
		require.NoError(t, err)

		res, err := svc.ResolveAvailability(ctx, aristotle.ID, "ada")
		require.NoError(t, err)
		assert.Equal(t, availability.Locked, res.Status)
		assert.False(t, res.IsAvailable)
		assert.Equal(t, aristotle, res.Node)

		_, err = svc.Advance(ctx, "ada", plato.ID, workflow.Ready)
		require.NoError(t, err)
		_, err = svc.Advance(ctx, "ada", plato.ID, workflow.Started)
		require.NoError(t, err)

		res, err = svc.ResolveAvailability(ctx, plato.ID, "ada")
		require.NoError(t, err)
		assert.Equal(t, availability.InProgress, res.Status)

		_, err = svc.ImportProgress(ctx, progressstore.Record{LearnerID: "ada", NodeID: augustine.ID, State: workflow.Mastered})
		require.NoError(t, err)
		res, err = svc.ResolveAvailability(ctx, augustine.ID, "ada")
		require.NoError(t, err)
		assert.Equal(t, availability.Completed, res.Status)

		_, err = svc.ResolveAvailability(ctx, nodeid.Lecture("socrates"), "ada")
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = svc.ResolveAvailability(ctx, plato.ID, "nobody")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestImportProgress_KeepsExisting(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		ctx := testContext()
		svc := newService(t, b, nil)

		_, err := svc.Advance(ctx, "ada", plato.ID, workflow.Ready)
		require.NoError(t, err)

		wrote, err := svc.ImportProgress(ctx, progressstore.Record{LearnerID: "ada", NodeID: plato.ID, State: workflow.Mastered})
		require.NoError(t, err)
		assert.False(t, wrote)

		results, err := svc.ListAvailability(ctx, "ada", "ancient")
		require.NoError(t, err)
		for _, r := range results {
			if r.Node.ID == plato.ID {
				assert.Equal(t, availability.Available, r.Status)
			}
		}

		_, err = svc.ImportProgress(ctx, progressstore.Record{LearnerID: "ghost", NodeID: plato.ID, State: workflow.Mastered})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestMetricsRecorded(t *testing.T) {
	ctx := testContext()
	reg := prometheus.NewRegistry()
	svc := newService(t, backends[0], metrics.New(reg))

	_, err := svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
	require.NoError(t, err)
	_, err = svc.AddPrerequisite(ctx, aristotle.ID, plato.ID, true, 3)
	require.Error(t, err)
	_, err = svc.AddPrerequisite(ctx, plato.ID, aristotle.ID, true, 3)
	require.Error(t, err)

	expected := `
# HELP learngrid_prerequisites_rejected_total Prerequisite insertions refused, by reason.
# TYPE learngrid_prerequisites_rejected_total counter
learngrid_prerequisites_rejected_total{reason="conflict"} 1
learngrid_prerequisites_rejected_total{reason="cycle"} 1
# HELP learngrid_prerequisites_added_total Prerequisite edges written to the store.
# TYPE learngrid_prerequisites_added_total counter
learngrid_prerequisites_added_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"learngrid_prerequisites_rejected_total", "learngrid_prerequisites_added_total"))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MasteryThreshold = 120
	_, err := New(inmemorytopology.New(), inmemorystore.New(), nil, cfg)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	cfg = DefaultConfig()
	cfg.Weights.Required = 10
	_, err = New(inmemorytopology.New(), inmemorystore.New(), nil, cfg)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
