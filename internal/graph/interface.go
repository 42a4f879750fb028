package graph

import (
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
)

// View is the read-only graph surface the traversal algorithms depend on.
//
// *Model is the reference implementation. Tests and callers holding a
// differently shaped snapshot can provide their own.
type View interface {
	// Node retrieves a node by its address, reporting whether it exists.
	Node(id nodeid.Address) (node.Node, bool)

	// PrerequisitesOf returns the edges whose dependent is id, in the order
	// they were created. Unknown ids yield an empty slice.
	PrerequisitesOf(id nodeid.Address) []node.Edge
}
