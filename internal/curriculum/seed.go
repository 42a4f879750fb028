package curriculum

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/progressstore"
)

// Target receives a loaded curriculum. *service.Service satisfies it.
type Target interface {
	AddNode(ctx context.Context, n node.Node) error
	AddPrerequisite(ctx context.Context, dependent, prerequisite nodeid.Address, required bool, importance int) (node.Edge, error)
	RegisterLearner(ctx context.Context, learnerID string) error
	// ImportProgress writes rec unless the learner already has a record for
	// the node, reporting whether it wrote.
	ImportProgress(ctx context.Context, rec progressstore.Record) (bool, error)
}

// SeedStats counts what Seed wrote.
type SeedStats struct {
	Nodes                int
	Prerequisites        int
	SkippedPrerequisites int
	Learners             int
	Progress             int
}

// Seed writes c into target. Prerequisites go through the same checked
// insertion path as interactive edits, so a curriculum that would close a
// cycle is rejected at the offending block. Edges and progress that already
// exist are left alone, which makes seeding a persistent store repeatable.
func Seed(ctx context.Context, c *Curriculum, target Target) (SeedStats, error) {
	logger := ctxlog.FromContext(ctx)
	var stats SeedStats

	for _, n := range c.Nodes {
		if err := target.AddNode(ctx, n); err != nil {
			return stats, fmt.Errorf("seeding node %s: %w", n.ID, err)
		}
		stats.Nodes++
	}

	for _, p := range c.Prerequisites {
		_, err := target.AddPrerequisite(ctx, p.Dependent, p.Prerequisite, p.Required, p.Importance)
		var conflict *apperr.ConflictError
		switch {
		case errors.As(err, &conflict):
			logger.Debug("Prerequisite already present, skipping.",
				"dependent", p.Dependent.String(), "prerequisite", p.Prerequisite.String(), "edge_id", conflict.ExistingEdgeID)
			stats.SkippedPrerequisites++
		case err != nil:
			return stats, fmt.Errorf("%s: %w", p.Source, err)
		default:
			stats.Prerequisites++
		}
	}

	for _, l := range c.Learners {
		if err := target.RegisterLearner(ctx, l.ID); err != nil {
			return stats, fmt.Errorf("seeding learner %q: %w", l.ID, err)
		}
		stats.Learners++

		ids := slices.SortedFunc(maps.Keys(l.Progress), func(a, b nodeid.Address) int {
			if a.Less(b) {
				return -1
			}
			if b.Less(a) {
				return 1
			}
			return 0
		})
		for _, id := range ids {
			wrote, err := target.ImportProgress(ctx, progressstore.Record{LearnerID: l.ID, NodeID: id, State: l.Progress[id]})
			if err != nil {
				return stats, fmt.Errorf("seeding progress of %q on %s: %w", l.ID, id, err)
			}
			if wrote {
				stats.Progress++
			}
		}
	}

	logger.Info("Curriculum seeded.",
		"nodes", stats.Nodes,
		"prerequisites", stats.Prerequisites,
		"skipped_prerequisites", stats.SkippedPrerequisites,
		"learners", stats.Learners,
		"progress", stats.Progress)
	return stats, nil
}
