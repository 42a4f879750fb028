package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/availability"
	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/graph"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/readiness"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

// RegisterLearner makes a learner known to the engine.
func (s *Service) RegisterLearner(ctx context.Context, learnerID string) error {
	ctxlog.FromContext(ctx).Debug("Registering learner.", "learner", learnerID)
	return fail(ctx, "register learner", s.progress.AddLearner(ctx, learnerID))
}

// ImportProgress writes rec as-is unless a record already exists for the
// learner and node. It reports whether it wrote.
func (s *Service) ImportProgress(ctx context.Context, rec progressstore.Record) (bool, error) {
	if err := s.requireLearner(ctx, rec.LearnerID); err != nil {
		return false, fail(ctx, "import progress", err)
	}
	if _, err := s.topology.GetNode(ctx, rec.NodeID); err != nil {
		return false, fail(ctx, "import progress", err)
	}
	_, exists, err := s.progress.Get(ctx, rec.LearnerID, rec.NodeID)
	if err != nil {
		return false, fail(ctx, "import progress", err)
	}
	if exists {
		return false, nil
	}
	if err := s.progress.Put(ctx, rec); err != nil {
		return false, fail(ctx, "import progress", err)
	}
	return true, nil
}

// ComputeReadiness scores how prepared the learner is to start nodeID.
func (s *Service) ComputeReadiness(ctx context.Context, nodeID nodeid.Address, learnerID string) (readiness.Result, error) {
	ctxlog.FromContext(ctx).Debug("Computing readiness.", "node", nodeID.String(), "learner", learnerID)

	res, err := s.readiness(ctx, nodeID, learnerID)
	if err != nil {
		return readiness.Result{}, fail(ctx, "compute readiness", err)
	}
	s.metrics.ReadinessComputed()
	return res, nil
}

func (s *Service) readiness(ctx context.Context, nodeID nodeid.Address, learnerID string) (readiness.Result, error) {
	if err := s.requireLearner(ctx, learnerID); err != nil {
		return readiness.Result{}, err
	}
	edges, err := s.topology.PrerequisitesOf(ctx, nodeID)
	if err != nil {
		return readiness.Result{}, err
	}
	states, err := s.progress.ForLearner(ctx, learnerID)
	if err != nil {
		return readiness.Result{}, err
	}
	return readiness.Score(edges, states, s.cfg.Weights), nil
}

// ResolveAvailability classifies a single node for the learner. Unknown
// learners and nodes are reported as apperr.ErrNotFound.
func (s *Service) ResolveAvailability(ctx context.Context, nodeID nodeid.Address, learnerID string) (availability.Result, error) {
	ctxlog.FromContext(ctx).Debug("Resolving availability.", "node", nodeID.String(), "learner", learnerID)

	if err := s.requireLearner(ctx, learnerID); err != nil {
		return availability.Result{}, fail(ctx, "resolve availability", err)
	}
	n, err := s.topology.GetNode(ctx, nodeID)
	if err != nil {
		return availability.Result{}, fail(ctx, "resolve availability", err)
	}
	edges, err := s.topology.PrerequisitesOf(ctx, nodeID)
	if err != nil {
		return availability.Result{}, fail(ctx, "resolve availability", err)
	}
	states, err := s.progress.ForLearner(ctx, learnerID)
	if err != nil {
		return availability.Result{}, fail(ctx, "resolve availability", err)
	}
	s.metrics.ReadinessComputed()
	return availability.Resolve(n, edges, states, s.cfg.Weights), nil
}

// ListAvailability classifies every node for the learner, optionally only
// those of one category, ranked in-progress first and then by readiness.
func (s *Service) ListAvailability(ctx context.Context, learnerID, category string) ([]availability.Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Listing availability.", "learner", learnerID, "category", category)

	if err := s.requireLearner(ctx, learnerID); err != nil {
		return nil, fail(ctx, "list availability", err)
	}
	g, err := graph.Load(ctx, s.topology)
	if err != nil {
		return nil, fail(ctx, "list availability", err)
	}
	states, err := s.progress.ForLearner(ctx, learnerID)
	if err != nil {
		return nil, fail(ctx, "list availability", err)
	}

	start := time.Now()
	results, err := availability.ResolveAll(ctx, g, states, availability.Options{
		Weights:  s.cfg.Weights,
		Workers:  s.cfg.Workers,
		Category: category,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AvailabilityResolved(time.Since(start).Seconds())
	logger.Debug("Availability resolved.", "nodes", len(results), "duration", time.Since(start))
	return results, nil
}

// Suggestions returns up to limit nodes the learner can work on now, in
// ranked order. A limit of zero or less returns all of them.
func (s *Service) Suggestions(ctx context.Context, learnerID string, limit int) ([]availability.Result, error) {
	ranked, err := s.ListAvailability(ctx, learnerID, "")
	if err != nil {
		return nil, err
	}
	return availability.Suggestions(ranked, limit), nil
}

// NextWorkflowStates returns the states reachable from state in one step.
func (s *Service) NextWorkflowStates(state workflow.State) []workflow.State {
	return workflow.NextStates(state)
}

// Advance moves the learner's progress on nodeID to next.
//
// The record is created in LOCKED on first use. Moves outside the transition
// table fail with an error wrapping both apperr.ErrValidation and
// workflow.ErrInvalidTransition. Unlocking (LOCKED to READY) additionally
// requires every required prerequisite to be mastered.
func (s *Service) Advance(ctx context.Context, learnerID string, nodeID nodeid.Address, next workflow.State) (progressstore.Record, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Advancing workflow.", "learner", learnerID, "node", nodeID.String(), "next", next.String())

	if err := s.requireLearner(ctx, learnerID); err != nil {
		return progressstore.Record{}, fail(ctx, "advance", err)
	}

	var unmet []string
	if next == workflow.Ready {
		res, err := s.readiness(ctx, nodeID, learnerID)
		if err != nil {
			return progressstore.Record{}, fail(ctx, "advance", err)
		}
		for _, e := range res.MissingRequired {
			unmet = append(unmet, e.Prerequisite.String())
		}
	} else if _, err := s.topology.GetNode(ctx, nodeID); err != nil {
		return progressstore.Record{}, fail(ctx, "advance", err)
	}

	rec, err := s.progress.Update(ctx, learnerID, nodeID, func(current workflow.State) (workflow.State, error) {
		if current == workflow.Locked && next == workflow.Ready && len(unmet) > 0 {
			return current, apperr.Validationf("cannot unlock %s: required prerequisites not mastered: %s",
				nodeID, strings.Join(unmet, ", "))
		}
		return workflow.Transition(current, next)
	})
	return s.recordTransition(ctx, rec, err)
}

// RecordMasteryScore resolves a mastery test taken in MASTERY_TESTING:
// scores at or above the configured threshold master the node, lower scores
// send the learner back to INITIAL_REFLECTION.
func (s *Service) RecordMasteryScore(ctx context.Context, learnerID string, nodeID nodeid.Address, score float64) (progressstore.Record, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Recording mastery score.", "learner", learnerID, "node", nodeID.String(), "score", score)

	if err := s.requireLearner(ctx, learnerID); err != nil {
		return progressstore.Record{}, fail(ctx, "record mastery", err)
	}
	if _, err := s.topology.GetNode(ctx, nodeID); err != nil {
		return progressstore.Record{}, fail(ctx, "record mastery", err)
	}

	rec, err := s.progress.Update(ctx, learnerID, nodeID, func(current workflow.State) (workflow.State, error) {
		return workflow.EvaluateMastery(current, score, s.cfg.MasteryThreshold)
	})
	return s.recordTransition(ctx, rec, err)
}

func (s *Service) recordTransition(ctx context.Context, rec progressstore.Record, err error) (progressstore.Record, error) {
	logger := ctxlog.FromContext(ctx)
	if err != nil {
		err = classify(err)
		if errors.Is(err, apperr.ErrValidation) {
			s.metrics.TransitionRejected()
			logger.Warn("Workflow transition rejected.",
				"learner", rec.LearnerID, "node", rec.NodeID.String(), "state", rec.State.String(), "error", err)
		}
		return rec, fail(ctx, "update progress", err)
	}
	s.metrics.Transitioned(rec.State)
	logger.Info("Workflow advanced.", "learner", rec.LearnerID, "node", rec.NodeID.String(), "state", rec.State.String())
	return rec, nil
}

func (s *Service) requireLearner(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return apperr.Validationf("learner id is required")
	}
	ok, err := s.progress.LearnerExists(ctx, learnerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFoundf("learner %q not found", learnerID)
	}
	return nil
}
