// Package readiness scores how prepared a learner is to start a node, from
// the learner's progress on that node's prerequisites.
package readiness

import (
	"math"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

// Weights splits the 100 point scale between required and recommended
// prerequisites.
type Weights struct {
	Required    float64 `yaml:"required"`
	Recommended float64 `yaml:"recommended"`
}

// DefaultWeights gives required prerequisites 70 points and recommended ones 30.
var DefaultWeights = Weights{Required: 70, Recommended: 30}

// Validate checks that both shares are non-negative and add up to 100.
func (w Weights) Validate() error {
	if w.Required < 0 || w.Recommended < 0 {
		return apperr.Validationf("readiness weights must be non-negative, got %v/%v", w.Required, w.Recommended)
	}
	if math.Abs(w.Required+w.Recommended-100) > 1e-9 {
		return apperr.Validationf("readiness weights must add up to 100, got %v", w.Required+w.Recommended)
	}
	return nil
}

// Breakdown describes the recommended half of a score.
type Breakdown struct {
	Total          int
	Completed      int
	Missing        []node.Edge
	CompletedEdges []node.Edge
	// Score is the recommended share earned, already rounded.
	Score float64
}

// Result is the readiness of one learner for one node.
type Result struct {
	// Satisfied is true when every required prerequisite is completed.
	Satisfied bool
	// Score is in [0, 100], rounded to two decimals.
	Score             float64
	MissingRequired   []node.Edge
	CompletedRequired []node.Edge
	Recommended       Breakdown
}

// Score computes readiness from the prerequisite edges of a node and the
// learner's states. A prerequisite counts as completed only in
// workflow.Mastered; nodes absent from states are treated as not started.
//
// A category with no edges earns its full share, so a node without
// prerequisites scores 100 and is satisfied.
func Score(edges []node.Edge, states map[nodeid.Address]workflow.State, w Weights) Result {
	var res Result
	requiredTotal := 0
	for _, e := range edges {
		done := states[e.Prerequisite].IsCompleted()
		switch {
		case e.Required && done:
			requiredTotal++
			res.CompletedRequired = append(res.CompletedRequired, e)
		case e.Required:
			requiredTotal++
			res.MissingRequired = append(res.MissingRequired, e)
		case done:
			res.Recommended.Total++
			res.Recommended.Completed++
			res.Recommended.CompletedEdges = append(res.Recommended.CompletedEdges, e)
		default:
			res.Recommended.Total++
			res.Recommended.Missing = append(res.Recommended.Missing, e)
		}
	}

	required := share(w.Required, len(res.CompletedRequired), requiredTotal)
	recommended := share(w.Recommended, res.Recommended.Completed, res.Recommended.Total)

	res.Satisfied = len(res.MissingRequired) == 0
	res.Recommended.Score = round2(recommended)
	res.Score = round2(required + recommended)
	return res
}

func share(weight float64, completed, total int) float64 {
	if total == 0 {
		return weight
	}
	return weight * float64(completed) / float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
