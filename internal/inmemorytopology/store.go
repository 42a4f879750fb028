package inmemorytopology

import (
	"context"
	"slices"
	"sync"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu    sync.RWMutex
	nodes map[nodeid.Address]node.Node
	edges []node.Edge // creation order
}

// New creates a new, empty in-memory topology store.
func New() *Store {
	return &Store{
		nodes: make(map[nodeid.Address]node.Node),
	}
}

var _ topologystore.Store = (*Store)(nil)

// AddNode adds or replaces a node in the store.
func (s *Store) AddNode(ctx context.Context, n node.Node) error {
	if n.ID.IsZero() {
		return apperr.Validationf("node id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[n.ID] = n
	return nil
}

// GetNode retrieves a single node by its address.
func (s *Store) GetNode(ctx context.Context, id nodeid.Address) (node.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getNode(id)
}

// AllNodes returns a sorted snapshot of all nodes in the topology.
func (s *Store) AllNodes(ctx context.Context) ([]node.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allNodes(), nil
}

// AllEdges returns a snapshot of all edges in creation order.
func (s *Store) AllEdges(ctx context.Context) ([]node.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.edges), nil
}

// PrerequisitesOf returns the edges whose dependent is id.
func (s *Store) PrerequisitesOf(ctx context.Context, id nodeid.Address) ([]node.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prerequisitesOf(id)
}

// DeleteEdge removes an edge by id.
func (s *Store) DeleteEdge(ctx context.Context, edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.edges, func(e node.Edge) bool { return e.ID == edgeID })
	if idx < 0 {
		return apperr.NotFoundf("edge %q", edgeID)
	}
	s.edges = slices.Delete(s.edges, idx, idx+1)
	return nil
}

// Atomically runs fn while holding the write lock. Edges created through the
// transaction are staged and only appended to the store if fn succeeds.
func (s *Store) Atomically(ctx context.Context, fn func(tx topologystore.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	s.edges = append(s.edges, tx.staged...)
	return nil
}

func (s *Store) getNode(id nodeid.Address) (node.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return node.Node{}, apperr.NotFoundf("node %q", id.String())
	}
	return n, nil
}

func (s *Store) allNodes() []node.Node {
	nodes := make([]node.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, node.Compare)
	return nodes
}

func (s *Store) prerequisitesOf(id nodeid.Address) ([]node.Edge, error) {
	if _, ok := s.nodes[id]; !ok {
		return nil, apperr.NotFoundf("node %q", id.String())
	}
	out := []node.Edge{}
	for _, e := range s.edges {
		if e.Dependent == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// txn is the transactional view handed to Atomically callbacks. The store's
// write lock is already held, so it reads the maps directly.
type txn struct {
	store  *Store
	staged []node.Edge
}

func (t *txn) GetNode(ctx context.Context, id nodeid.Address) (node.Node, error) {
	return t.store.getNode(id)
}

func (t *txn) AllNodes(ctx context.Context) ([]node.Node, error) {
	return t.store.allNodes(), nil
}

func (t *txn) AllEdges(ctx context.Context) ([]node.Edge, error) {
	out := slices.Clone(t.store.edges)
	return append(out, t.staged...), nil
}

func (t *txn) PrerequisitesOf(ctx context.Context, id nodeid.Address) ([]node.Edge, error) {
	out, err := t.store.prerequisitesOf(id)
	if err != nil {
		return nil, err
	}
	for _, e := range t.staged {
		if e.Dependent == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *txn) CreateEdge(ctx context.Context, e node.Edge) error {
	if _, ok := t.store.nodes[e.Dependent]; !ok {
		return apperr.NotFoundf("dependent node %q", e.Dependent.String())
	}
	if _, ok := t.store.nodes[e.Prerequisite]; !ok {
		return apperr.NotFoundf("prerequisite node %q", e.Prerequisite.String())
	}
	t.staged = append(t.staged, e)
	return nil
}
