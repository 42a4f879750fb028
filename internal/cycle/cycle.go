// Package cycle decides whether a proposed prerequisite edge would close a
// cycle in the prerequisite graph.
//
// The detector is strict: any cycle it can reach from the proposed
// prerequisite is reported, including one that already exists in the data and
// does not involve the proposed edge. It is a pure query and never mutates
// its input. The tolerant counterpart used for learning paths lives in the
// learningpath package and is intentionally a separate abstraction.
package cycle

import (
	"github.com/specialistvlad/learngrid/internal/graph"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
)

// Result is the outcome of a cycle check.
type Result struct {
	HasCycle bool
	// Path lists the nodes forming the cycle in traversal order. Empty when
	// HasCycle is false.
	Path []nodeid.Address
}

// frame is one level of the explicit DFS stack.
type frame struct {
	id    nodeid.Address
	edges []node.Edge
	next  int
}

// WouldCreateCycle reports whether adding "dependent requires prerequisite"
// to g would create a cycle.
//
// The search starts at prerequisite and follows each node's own prerequisite
// list, in stored order, looking for dependent. When dependent is reached the
// returned path is the DFS stack with dependent appended to close the loop.
// A back edge to a node still on the stack means the existing graph already
// holds a cycle; that is reported too, with the path running from the
// revisited node around to itself.
func WouldCreateCycle(g graph.View, dependent, prerequisite nodeid.Address) Result {
	if dependent == prerequisite {
		return Result{HasCycle: true, Path: []nodeid.Address{dependent, dependent}}
	}

	visited := map[nodeid.Address]bool{prerequisite: true}
	onStack := map[nodeid.Address]int{prerequisite: 0}
	stack := []frame{{id: prerequisite, edges: g.PrerequisitesOf(prerequisite)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.edges) {
			delete(onStack, top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		next := top.edges[top.next].Prerequisite
		top.next++

		if next == dependent {
			return Result{HasCycle: true, Path: append(stackPath(stack), dependent)}
		}
		if idx, ok := onStack[next]; ok {
			return Result{HasCycle: true, Path: append(stackPath(stack[idx:]), next)}
		}
		if visited[next] {
			continue
		}
		visited[next] = true
		onStack[next] = len(stack)
		stack = append(stack, frame{id: next, edges: g.PrerequisitesOf(next)})
	}

	return Result{}
}

func stackPath(frames []frame) []nodeid.Address {
	path := make([]nodeid.Address, 0, len(frames)+1)
	for _, f := range frames {
		path = append(path, f.id)
	}
	return path
}
