// Package learningpath orders the prerequisite closure of a target node into a
// study sequence.
//
// Unlike the cycle package this traversal is tolerant: data that already
// contains a cycle still yields a path, with the back edge skipped, so a
// learner is never blocked by a bad curriculum entry.
package learningpath

import (
	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/graph"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
)

type mark uint8

const (
	unmarked mark = iota
	temporary
	permanent
)

type frame struct {
	id    nodeid.Address
	edges []node.Edge
	next  int
}

// Build returns every node in the prerequisite closure of target exactly
// once, prerequisites before the nodes that require them, with target last.
// Prerequisites are visited in stored edge order, so the result is stable for
// a given graph.
func Build(g graph.View, target nodeid.Address) ([]node.Node, error) {
	if _, ok := g.Node(target); !ok {
		return nil, apperr.NotFoundf("node %q not found", target)
	}

	// The depth-first walk from target reaches exactly the prerequisite
	// closure, so discovery and ordering happen in one pass.
	marks := make(map[nodeid.Address]mark)
	var path []node.Node

	marks[target] = temporary
	stack := []frame{{id: target, edges: g.PrerequisitesOf(target)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.edges) {
			marks[top.id] = permanent
			path = append(path, lookup(g, top.id))
			stack = stack[:len(stack)-1]
			continue
		}
		next := top.edges[top.next].Prerequisite
		top.next++

		// A temporary mark is a back edge into the current chain. Skip it.
		if marks[next] != unmarked {
			continue
		}
		marks[next] = temporary
		stack = append(stack, frame{id: next, edges: g.PrerequisitesOf(next)})
	}

	return path, nil
}

// Closure returns the set of nodes reachable from target by following
// prerequisite edges, target included.
func Closure(g graph.View, target nodeid.Address) map[nodeid.Address]struct{} {
	seen := map[nodeid.Address]struct{}{target: {}}
	stack := []nodeid.Address{target}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.PrerequisitesOf(id) {
			if _, ok := seen[e.Prerequisite]; ok {
				continue
			}
			seen[e.Prerequisite] = struct{}{}
			stack = append(stack, e.Prerequisite)
		}
	}
	return seen
}

// lookup returns the stored node, or a bare node for ids only known from
// edges.
func lookup(g graph.View, id nodeid.Address) node.Node {
	if n, ok := g.Node(id); ok {
		return n
	}
	return node.Node{ID: id}
}
