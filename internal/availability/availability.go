// Package availability classifies every node of the graph for a learner as
// locked, available, in progress or completed, and ranks the result.
package availability

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/graph"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/readiness"
	"github.com/specialistvlad/learngrid/internal/workflow"
	"golang.org/x/sync/errgroup"
)

// Status is the availability of a node for a learner.
type Status string

const (
	Locked     Status = "LOCKED"
	Available  Status = "AVAILABLE"
	InProgress Status = "IN_PROGRESS"
	Completed  Status = "COMPLETED"
)

// Result is the availability of one node for one learner.
type Result struct {
	Node      node.Node
	Status    Status
	Readiness readiness.Result
	// IsAvailable is true only for Available. Nodes already in progress or
	// completed are not offered as new starts.
	IsAvailable bool
}

// Resolve classifies a single node. Workflow progress on the node itself
// wins over readiness: a mastered node is completed and a node between
// started and mastery testing is in progress, whatever its prerequisites say.
// Otherwise the node is available exactly when its required prerequisites are
// satisfied.
func Resolve(n node.Node, prerequisites []node.Edge, states map[nodeid.Address]workflow.State, w readiness.Weights) Result {
	res := Result{
		Node:      n,
		Readiness: readiness.Score(prerequisites, states, w),
	}
	switch own := states[n.ID]; {
	case own.IsCompleted():
		res.Status = Completed
	case own.IsInProgress():
		res.Status = InProgress
	case res.Readiness.Satisfied:
		res.Status = Available
	default:
		res.Status = Locked
	}
	res.IsAvailable = res.Status == Available
	return res
}

// Graph is the graph surface ResolveAll needs. *graph.Model satisfies it.
type Graph interface {
	graph.View
	Nodes() []node.Node
}

// Options tune a bulk resolution.
type Options struct {
	Weights readiness.Weights
	// Workers bounds the number of nodes resolved concurrently. Zero means
	// GOMAXPROCS.
	Workers int
	// Category keeps only nodes of that category when non-empty. Matching is
	// case-insensitive.
	Category string
}

// ResolveAll classifies every node of g for the learner whose states are
// given, in parallel, and returns the results ranked with Sort.
func ResolveAll(ctx context.Context, g Graph, states map[nodeid.Address]workflow.State, opts Options) ([]Result, error) {
	if opts.Workers < 0 {
		return nil, apperr.Validationf("workers must not be negative, got %d", opts.Workers)
	}
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	nodes := g.Nodes()
	if opts.Category != "" {
		nodes = slices.DeleteFunc(nodes, func(n node.Node) bool {
			return !strings.EqualFold(n.Category, opts.Category)
		})
	}

	results := make([]Result, len(nodes))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, n := range nodes {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = Resolve(n, g.PrerequisitesOf(n.ID), states, opts.Weights)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("resolving availability: %w", err)
	}

	Sort(results)
	return results, nil
}

// Sort ranks results in place: in-progress nodes first, then by readiness
// score descending, then category, order within category and node id.
func Sort(results []Result) {
	slices.SortFunc(results, compare)
}

func compare(a, b Result) int {
	aIn, bIn := a.Status == InProgress, b.Status == InProgress
	if aIn != bIn {
		if aIn {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.Readiness.Score, a.Readiness.Score); c != 0 {
		return c
	}
	return node.Compare(a.Node, b.Node)
}

// Suggestions returns up to limit entries the learner can act on now:
// nodes in progress and nodes available to start, in ranked order. A limit
// of zero or less returns all of them.
func Suggestions(ranked []Result, limit int) []Result {
	out := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		if r.Status != InProgress && r.Status != Available {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
