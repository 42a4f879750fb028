// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Node and Edge, the vertices and prerequisite relations of
// the course graph, together with the invariants an edge must satisfy on its
// own.

package node

import (
	"github.com/google/uuid"
	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/nodeid"
)

// Importance bounds for prerequisite edges.
const (
	MinImportance = 1
	MaxImportance = 5
	// DefaultImportance is used when a curriculum file omits the attribute.
	DefaultImportance = 3
)

// Node is a single vertex in the prerequisite graph: a lecture or a
// philosophical entity. Nodes are read from storage and never created by the
// graph engine.
type Node struct {
	// ID is the unique, structured identifier for the node.
	ID nodeid.Address
	// Label is the human-readable display name, e.g. "Aristotle".
	Label string
	// Category groups nodes for listing and suggestion ranking, e.g. "ancient".
	Category string
	// Order is the declared position of the node within its category.
	Order int
}

// Display renders the node the way cycle paths are shown to users:
// "Label (id)". Nodes without a label fall back to the bare id.
func (n Node) Display() string {
	if n.Label == "" {
		return n.ID.String()
	}
	return n.Label + " (" + n.ID.String() + ")"
}

// Edge is a directed prerequisite relation: Dependent requires Prerequisite.
type Edge struct {
	// ID is the storage identifier of the relation.
	ID string
	// Dependent is the node that requires the prerequisite.
	Dependent nodeid.Address
	// Prerequisite is the node that must be completed first.
	Prerequisite nodeid.Address
	// Required edges gate availability; non-required edges are recommended.
	Required bool
	// Importance is an editorial weight in [MinImportance, MaxImportance].
	Importance int
}

// NewEdge validates the relation and assigns it a fresh identifier.
func NewEdge(dependent, prerequisite nodeid.Address, required bool, importance int) (Edge, error) {
	e := Edge{
		ID:           uuid.NewString(),
		Dependent:    dependent,
		Prerequisite: prerequisite,
		Required:     required,
		Importance:   importance,
	}
	if err := e.Validate(); err != nil {
		return Edge{}, err
	}
	return e, nil
}

// Validate checks the edge invariants that do not depend on the rest of the
// graph. Self-reference is reported as a circular dependency.
func (e Edge) Validate() error {
	if e.Dependent.IsZero() {
		return apperr.Validationf("dependent node is required")
	}
	if e.Prerequisite.IsZero() {
		return apperr.Validationf("prerequisite node is required")
	}
	if e.Importance < MinImportance || e.Importance > MaxImportance {
		return apperr.Validationf("importance must be between %d and %d, got %d", MinImportance, MaxImportance, e.Importance)
	}
	if e.Dependent == e.Prerequisite {
		return &apperr.CycleError{Path: []string{e.Dependent.String(), e.Dependent.String()}}
	}
	return nil
}

// Compare orders nodes by category, then order within category, then id. It
// is the canonical listing order used by stores and the graph model.
func Compare(a, b Node) int {
	switch {
	case a.Category != b.Category:
		if a.Category < b.Category {
			return -1
		}
		return 1
	case a.Order != b.Order:
		if a.Order < b.Order {
			return -1
		}
		return 1
	case a.ID.Less(b.ID):
		return -1
	case b.ID.Less(a.ID):
		return 1
	default:
		return 0
	}
}
