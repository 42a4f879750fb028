package duckdbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/topologystore"
)

// Store is a DuckDB-backed topology and progress store.
type Store struct {
	db *sql.DB
}

var (
	_ topologystore.Store = (*Store)(nil)
	_ progressstore.Store = (*Store)(nil)
)

// Open connects to the database at dsn and applies the schema.
// An empty dsn opens a private in-memory database.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	db, err := openDB(ctx, dsn, cfg)
	if err != nil {
		return nil, apperr.Storage("open", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, SchemaSQL)
	return apperr.Storage("migrate", err)
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return apperr.Storage("ping", s.db.PingContext(ctx))
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddNode adds or replaces a node.
func (s *Store) AddNode(ctx context.Context, n node.Node) error {
	if n.ID.IsZero() {
		return apperr.Validationf("node id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO nodes (node_id, label, category, ord)
		VALUES (?, ?, ?, ?)`,
		n.ID.String(), n.Label, n.Category, n.Order)
	return apperr.Storage("add node", err)
}

func (s *Store) GetNode(ctx context.Context, id nodeid.Address) (node.Node, error) {
	return getNode(ctx, s.db, id)
}

func (s *Store) AllNodes(ctx context.Context) ([]node.Node, error) {
	return allNodes(ctx, s.db)
}

func (s *Store) AllEdges(ctx context.Context) ([]node.Edge, error) {
	return queryEdges(ctx, s.db, "all edges", `
		SELECT edge_id, dependent, prerequisite, required, importance
		FROM edges ORDER BY seq`)
}

func (s *Store) PrerequisitesOf(ctx context.Context, id nodeid.Address) ([]node.Edge, error) {
	return prerequisitesOf(ctx, s.db, id)
}

// DeleteEdge removes an edge by id.
func (s *Store) DeleteEdge(ctx context.Context, edgeID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM edges WHERE edge_id = ?`, edgeID)
	if err != nil {
		return apperr.Storage("delete edge", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("delete edge", err)
	}
	if n == 0 {
		return apperr.NotFoundf("edge %q", edgeID)
	}
	return nil
}

// Atomically runs fn inside a database transaction. The transaction is
// committed only if fn returns nil.
func (s *Store) Atomically(ctx context.Context, fn func(tx topologystore.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage("begin", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(&txn{tx: sqlTx}); err != nil {
		return err
	}
	return apperr.Storage("commit", sqlTx.Commit())
}

// txn is the transactional view handed to Atomically callbacks.
type txn struct {
	tx *sql.Tx
}

func (t *txn) GetNode(ctx context.Context, id nodeid.Address) (node.Node, error) {
	return getNode(ctx, t.tx, id)
}

func (t *txn) AllNodes(ctx context.Context) ([]node.Node, error) {
	return allNodes(ctx, t.tx)
}

func (t *txn) AllEdges(ctx context.Context) ([]node.Edge, error) {
	return queryEdges(ctx, t.tx, "all edges", `
		SELECT edge_id, dependent, prerequisite, required, importance
		FROM edges ORDER BY seq`)
}

func (t *txn) PrerequisitesOf(ctx context.Context, id nodeid.Address) ([]node.Edge, error) {
	return prerequisitesOf(ctx, t.tx, id)
}

func (t *txn) CreateEdge(ctx context.Context, e node.Edge) error {
	if _, err := getNode(ctx, t.tx, e.Dependent); err != nil {
		return err
	}
	if _, err := getNode(ctx, t.tx, e.Prerequisite); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO edges (edge_id, dependent, prerequisite, required, importance)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Dependent.String(), e.Prerequisite.String(), e.Required, e.Importance)
	return apperr.Storage("create edge", err)
}

func getNode(ctx context.Context, q querier, id nodeid.Address) (node.Node, error) {
	n := node.Node{ID: id}
	err := q.QueryRowContext(ctx, `
		SELECT label, category, ord FROM nodes WHERE node_id = ?`, id.String()).
		Scan(&n.Label, &n.Category, &n.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return node.Node{}, apperr.NotFoundf("node %q", id.String())
	}
	if err != nil {
		return node.Node{}, apperr.Storage("get node", err)
	}
	return n, nil
}

func allNodes(ctx context.Context, q querier) ([]node.Node, error) {
	rows, err := q.QueryContext(ctx, `SELECT node_id, label, category, ord FROM nodes`)
	if err != nil {
		return nil, apperr.Storage("all nodes", err)
	}
	defer rows.Close()

	var nodes []node.Node
	for rows.Next() {
		var raw string
		var n node.Node
		if err := rows.Scan(&raw, &n.Label, &n.Category, &n.Order); err != nil {
			return nil, apperr.Storage("all nodes", err)
		}
		if n.ID, err = nodeid.Parse(raw); err != nil {
			return nil, apperr.Storage("all nodes", fmt.Errorf("corrupt node id %q: %w", raw, err))
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("all nodes", err)
	}
	slices.SortFunc(nodes, node.Compare)
	return nodes, nil
}

func prerequisitesOf(ctx context.Context, q querier, id nodeid.Address) ([]node.Edge, error) {
	if _, err := getNode(ctx, q, id); err != nil {
		return nil, err
	}
	edges, err := queryEdges(ctx, q, "prerequisites", `
		SELECT edge_id, dependent, prerequisite, required, importance
		FROM edges WHERE dependent = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []node.Edge{}
	}
	return edges, nil
}

func queryEdges(ctx context.Context, q querier, op, query string, args ...any) ([]node.Edge, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	defer rows.Close()

	var edges []node.Edge
	for rows.Next() {
		var e node.Edge
		var dep, pre string
		if err := rows.Scan(&e.ID, &dep, &pre, &e.Required, &e.Importance); err != nil {
			return nil, apperr.Storage(op, err)
		}
		if e.Dependent, err = nodeid.Parse(dep); err != nil {
			return nil, apperr.Storage(op, fmt.Errorf("corrupt dependent %q: %w", dep, err))
		}
		if e.Prerequisite, err = nodeid.Parse(pre); err != nil {
			return nil, apperr.Storage(op, fmt.Errorf("corrupt prerequisite %q: %w", pre, err))
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return edges, nil
}
