package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/topologystore"
)

// Model is an immutable snapshot of nodes and prerequisite edges.
type Model struct {
	nodes   map[nodeid.Address]node.Node
	ordered []node.Node
	edges   []node.Edge
	prereqs map[nodeid.Address][]node.Edge
}

var _ View = (*Model)(nil)

// New builds a model from plain records. Edges are kept in the given order.
// Edges may reference nodes that are not in the node list; they still take
// part in traversal, which keeps cycle detection honest on partial snapshots.
func New(nodes []node.Node, edges []node.Edge) *Model {
	m := &Model{
		nodes:   make(map[nodeid.Address]node.Node, len(nodes)),
		ordered: slices.Clone(nodes),
		edges:   slices.Clone(edges),
		prereqs: make(map[nodeid.Address][]node.Edge),
	}
	for _, n := range nodes {
		m.nodes[n.ID] = n
	}
	slices.SortFunc(m.ordered, node.Compare)
	for _, e := range edges {
		m.prereqs[e.Dependent] = append(m.prereqs[e.Dependent], e)
	}
	return m
}

// Load reads a full snapshot from the store.
func Load(ctx context.Context, r topologystore.Reader) (*Model, error) {
	nodes, err := r.AllNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
	}
	edges, err := r.AllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading edges: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Graph snapshot loaded.", "nodes", len(nodes), "edges", len(edges))
	return New(nodes, edges), nil
}

// Node retrieves a node by its address.
func (m *Model) Node(id nodeid.Address) (node.Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Has reports whether the node exists in the snapshot.
func (m *Model) Has(id nodeid.Address) bool {
	_, ok := m.nodes[id]
	return ok
}

// Nodes returns all nodes in canonical listing order.
func (m *Model) Nodes() []node.Node {
	return slices.Clone(m.ordered)
}

// Edges returns all edges in creation order.
func (m *Model) Edges() []node.Edge {
	return slices.Clone(m.edges)
}

// PrerequisitesOf returns the edges whose dependent is id.
func (m *Model) PrerequisitesOf(id nodeid.Address) []node.Edge {
	return slices.Clone(m.prereqs[id])
}

// FindEdge looks up the edge between a dependent and one of its prerequisites.
func (m *Model) FindEdge(dependent, prerequisite nodeid.Address) (node.Edge, bool) {
	for _, e := range m.prereqs[dependent] {
		if e.Prerequisite == prerequisite {
			return e, true
		}
	}
	return node.Edge{}, false
}

// Label returns the display form of a node, "Label (id)", or the bare id for
// nodes missing from the snapshot.
func (m *Model) Label(id nodeid.Address) string {
	if n, ok := m.nodes[id]; ok {
		return n.Display()
	}
	return id.String()
}
