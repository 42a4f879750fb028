// Package progressstore defines the interface for storing and retrieving the
// mutable progress of learners through the units of the prerequisite graph.
//
// # Why Progress Store Exists
//
// The progress store isolates **mutable learner state** (one workflow state per
// learner and node) from the **graph structure** (nodes, prerequisite edges)
// managed by topologystore.
//
// This separation provides several architectural benefits:
//   - **Clarity:** Progress updates never touch graph structure
//   - **Concurrency:** Frequent progress writes don't block topology reads
//   - **Flexibility:** Backends can be swapped (in-memory, DuckDB)
//
// # Record Lifecycle
//
// Exactly one Record exists per (learner, node) pair at any time. It is:
//  1. **Created** lazily in workflow.Locked on the first interaction
//  2. **Updated** in place as the learner moves through the workflow
//  3. **Never deleted** during normal operation
//
// Updates are compare-and-set: Update hands the current state to a callback
// and stores the callback's result only if no concurrent write happened in
// between, so the workflow transition table is always checked against the
// state actually being replaced.
package progressstore

import (
	"context"

	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

// Record is the progress of one learner on one node.
type Record struct {
	LearnerID string
	NodeID    nodeid.Address
	State     workflow.State
}

// UpdateFunc computes the next state from the current one. Returning an error
// aborts the update and leaves the record unchanged.
type UpdateFunc func(current workflow.State) (workflow.State, error)

// Store is the interface for managing learner progress.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	// AddLearner registers a learner. Registering twice is idempotent.
	AddLearner(ctx context.Context, learnerID string) error

	// LearnerExists reports whether the learner has been registered.
	LearnerExists(ctx context.Context, learnerID string) (bool, error)

	// Get returns the record for a learner and node. The boolean is false
	// (and the state workflow.Locked) when no record has been created yet.
	Get(ctx context.Context, learnerID string, id nodeid.Address) (Record, bool, error)

	// ForLearner returns the state of every node the learner has a record for.
	ForLearner(ctx context.Context, learnerID string) (map[nodeid.Address]workflow.State, error)

	// Update atomically replaces the learner's state for a node with the
	// result of fn, creating the record in workflow.Locked first if needed.
	Update(ctx context.Context, learnerID string, id nodeid.Address, fn UpdateFunc) (Record, error)

	// Put writes a record as-is, bypassing the workflow. It exists for
	// importing progress from curriculum files and backups only.
	Put(ctx context.Context, rec Record) error
}
