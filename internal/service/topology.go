package service

import (
	"context"
	"errors"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/cycle"
	"github.com/specialistvlad/learngrid/internal/graph"
	"github.com/specialistvlad/learngrid/internal/learningpath"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/topologystore"
)

// CycleReport is the answer to "would this prerequisite close a cycle?".
type CycleReport struct {
	HasCycle bool
	// Path lists the node ids forming the cycle, in traversal order.
	Path []nodeid.Address
	// Labels renders Path for display as "Label (id)".
	Labels []string
}

// AddNode registers or replaces a node in the topology.
func (s *Service) AddNode(ctx context.Context, n node.Node) error {
	ctxlog.FromContext(ctx).Debug("Adding node.", "node", n.ID.String())
	return fail(ctx, "add node", s.topology.AddNode(ctx, n))
}

// CheckCycle reports whether making dependent require prerequisite would
// create a cycle. It never writes.
func (s *Service) CheckCycle(ctx context.Context, dependent, prerequisite nodeid.Address) (CycleReport, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Checking for cycle.", "dependent", dependent.String(), "prerequisite", prerequisite.String())

	if err := s.requireNodes(ctx, s.topology, dependent, prerequisite); err != nil {
		return CycleReport{}, fail(ctx, "check cycle", err)
	}
	g, err := graph.Load(ctx, s.topology)
	if err != nil {
		return CycleReport{}, fail(ctx, "check cycle", err)
	}

	res := cycle.WouldCreateCycle(g, dependent, prerequisite)
	s.metrics.CycleChecked(res.HasCycle)
	report := CycleReport{HasCycle: res.HasCycle, Path: res.Path, Labels: cycle.Describe(res.Path, g)}
	if res.HasCycle {
		logger.Debug("Cycle found.", "path", report.Labels)
	}
	return report, nil
}

// AddPrerequisite records that dependent requires prerequisite.
//
// Validation, the existence checks, the duplicate check, the cycle check and
// the write run as one store transaction, so concurrent insertions can never
// together close a cycle. A duplicate is reported as *apperr.ConflictError
// carrying the existing edge id; a cycle as *apperr.CycleError carrying the
// labelled path.
func (s *Service) AddPrerequisite(ctx context.Context, dependent, prerequisite nodeid.Address, required bool, importance int) (node.Edge, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Adding prerequisite.",
		"dependent", dependent.String(), "prerequisite", prerequisite.String(),
		"required", required, "importance", importance)

	edge, err := node.NewEdge(dependent, prerequisite, required, importance)
	if err != nil && !errors.Is(err, apperr.ErrCircularDependency) {
		s.metrics.PrerequisiteRejected(rejectReason(err))
		return node.Edge{}, err
	}
	// Self-reference is left to the cycle check below, which labels the path.
	if err != nil {
		edge = node.Edge{Dependent: dependent, Prerequisite: prerequisite, Required: required, Importance: importance}
	}

	err = s.topology.Atomically(ctx, func(tx topologystore.Tx) error {
		if err := s.requireNodes(ctx, tx, dependent, prerequisite); err != nil {
			return err
		}
		g, err := graph.Load(ctx, tx)
		if err != nil {
			return err
		}
		if existing, ok := g.FindEdge(dependent, prerequisite); ok {
			return &apperr.ConflictError{
				ExistingEdgeID: existing.ID,
				Dependent:      dependent.String(),
				Prerequisite:   prerequisite.String(),
			}
		}
		res := cycle.WouldCreateCycle(g, dependent, prerequisite)
		s.metrics.CycleChecked(res.HasCycle)
		if res.HasCycle {
			return &apperr.CycleError{Path: cycle.Describe(res.Path, g)}
		}
		return tx.CreateEdge(ctx, edge)
	})
	if err != nil {
		s.metrics.PrerequisiteRejected(rejectReason(err))
		if errors.Is(err, apperr.ErrCircularDependency) {
			logger.Warn("Prerequisite rejected: would create a cycle.", "error", err)
		}
		return node.Edge{}, fail(ctx, "add prerequisite", err)
	}

	s.metrics.PrerequisiteAdded()
	logger.Info("Prerequisite added.",
		"edge_id", edge.ID, "dependent", dependent.String(), "prerequisite", prerequisite.String())
	return edge, nil
}

// RemovePrerequisite deletes an edge by id.
func (s *Service) RemovePrerequisite(ctx context.Context, edgeID string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Removing prerequisite.", "edge_id", edgeID)

	if err := s.topology.DeleteEdge(ctx, edgeID); err != nil {
		return fail(ctx, "remove prerequisite", err)
	}
	s.metrics.PrerequisiteRemoved()
	logger.Info("Prerequisite removed.", "edge_id", edgeID)
	return nil
}

// BuildLearningPath returns the prerequisite closure of target in study
// order, target last.
func (s *Service) BuildLearningPath(ctx context.Context, target nodeid.Address) ([]node.Node, error) {
	ctxlog.FromContext(ctx).Debug("Building learning path.", "target", target.String())

	g, err := graph.Load(ctx, s.topology)
	if err != nil {
		return nil, fail(ctx, "learning path", err)
	}
	return learningpath.Build(g, target)
}

// requireNodes fails with ErrNotFound if any id is absent.
func (s *Service) requireNodes(ctx context.Context, r topologystore.Reader, ids ...nodeid.Address) error {
	for _, id := range ids {
		if _, err := r.GetNode(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
