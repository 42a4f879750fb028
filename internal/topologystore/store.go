// Package topologystore defines the interface for storing and retrieving the
// structure of the prerequisite graph: nodes and the prerequisite edges
// between them.
//
// # Why Topology Store Exists
//
// The graph engine never owns storage. It borrows a snapshot of nodes and
// edges for the duration of one computation and discards it afterwards. The
// topology store is the boundary collaborator that holds the authoritative
// records, and it isolates the **graph structure** from the **learner
// progress** managed by progressstore.
//
// This separation provides several architectural benefits:
//   - **Clarity:** Structure queries (cycle checks, learning paths) don't mix with progress updates
//   - **Atomicity:** Edge insertion runs as one unit against the store, see Atomically
//   - **Flexibility:** Backends can be swapped (in-memory, DuckDB)
//
// # Atomic Edge Insertion
//
// Two concurrent requests adding prerequisites for the same dependent could
// each pass a cycle check against a snapshot that misses the other's insert,
// and together close a cycle. Implementations therefore expose Atomically:
// the existence check, the cycle check and the create all run inside one
// transaction that observes a consistent, fully committed graph and excludes
// other writers until it finishes.
package topologystore

import (
	"context"

	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
)

// Reader is the read side of the topology.
//
// Lookups of absent nodes return an error wrapping apperr.ErrNotFound. Any
// other failure wraps apperr.ErrStorage.
type Reader interface {
	// GetNode retrieves a single node by its address.
	GetNode(ctx context.Context, id nodeid.Address) (node.Node, error)

	// AllNodes returns a snapshot of every node in the topology.
	//
	// The order is category, then order within category, then id, so that
	// listings are stable across calls.
	AllNodes(ctx context.Context) ([]node.Node, error)

	// AllEdges returns a snapshot of every prerequisite edge, in creation order.
	AllEdges(ctx context.Context) ([]node.Edge, error)

	// PrerequisitesOf returns the edges whose dependent is id, in creation order.
	//
	// Returns an empty slice if the node has no prerequisites and an
	// ErrNotFound error if the node does not exist.
	PrerequisitesOf(ctx context.Context, id nodeid.Address) ([]node.Edge, error)
}

// Tx is the view of the store available inside Atomically.
type Tx interface {
	Reader

	// CreateEdge persists a validated edge. Both endpoints must exist.
	CreateEdge(ctx context.Context, e node.Edge) error
}

// Store is the interface for managing the prerequisite topology.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	Reader

	// AddNode registers or replaces a node. Adding the same node twice is idempotent.
	AddNode(ctx context.Context, n node.Node) error

	// DeleteEdge removes an edge by id, returning ErrNotFound if it is absent.
	DeleteEdge(ctx context.Context, edgeID string) error

	// Atomically runs fn as a single unit against the store. Writes made
	// through tx become visible only if fn returns nil, and no other write
	// interleaves with fn.
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}
