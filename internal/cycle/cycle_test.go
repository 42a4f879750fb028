package cycle

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/learngrid/internal/graph"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/stretchr/testify/assert"
)

func lec(name string) nodeid.Address { return nodeid.Lecture(name) }

// requires builds an edge list from "dependent requires prerequisite" pairs.
func requires(pairs ...[2]string) []node.Edge {
	edges := make([]node.Edge, 0, len(pairs))
	for i, p := range pairs {
		edges = append(edges, node.Edge{
			ID:           fmt.Sprintf("e%d", i),
			Dependent:    lec(p[0]),
			Prerequisite: lec(p[1]),
			Required:     true,
			Importance:   3,
		})
	}
	return edges
}

func model(edges []node.Edge, names ...string) *graph.Model {
	nodes := make([]node.Node, 0, len(names))
	for _, n := range names {
		nodes = append(nodes, node.Node{ID: lec(n), Label: n})
	}
	return graph.New(nodes, edges)
}

func TestWouldCreateCycle_SelfReference(t *testing.T) {
	g := model(nil, "plato")
	res := WouldCreateCycle(g, lec("plato"), lec("plato"))
	assert.True(t, res.HasCycle)
	assert.Equal(t, []nodeid.Address{lec("plato"), lec("plato")}, res.Path)

	// Self reference is a cycle even for nodes the graph has never seen.
	res = WouldCreateCycle(graph.New(nil, nil), lec("ghost"), lec("ghost"))
	assert.True(t, res.HasCycle)
}

func TestWouldCreateCycle_NoCycle(t *testing.T) {
	g := model(requires(
		[2]string{"aristotle", "plato"},
		[2]string{"augustine", "aristotle"},
	), "plato", "aristotle", "augustine")

	res := WouldCreateCycle(g, lec("augustine"), lec("plato"))
	assert.False(t, res.HasCycle)
	assert.Empty(t, res.Path)

	res = WouldCreateCycle(g, lec("plato"), lec("socrates"))
	assert.False(t, res.HasCycle)
}

func TestWouldCreateCycle_TwoNodeLoop(t *testing.T) {
	// Augustine requires Plato; proposing Plato requires Augustine closes a loop.
	g := model(requires([2]string{"augustine", "plato"}), "plato", "augustine")

	res := WouldCreateCycle(g, lec("plato"), lec("augustine"))
	assert.True(t, res.HasCycle)
	if diff := cmp.Diff([]nodeid.Address{lec("augustine"), lec("plato")}, res.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestWouldCreateCycle_ChainContainsAllNodes(t *testing.T) {
	for _, n := range []int{2, 3, 5, 12} {
		t.Run(fmt.Sprintf("chain of %d", n), func(t *testing.T) {
			var pairs [][2]string
			var want []nodeid.Address
			for i := 1; i <= n; i++ {
				want = append(want, lec(fmt.Sprintf("x%d", i)))
				if i < n {
					pairs = append(pairs, [2]string{fmt.Sprintf("x%d", i), fmt.Sprintf("x%d", i+1)})
				}
			}
			g := graph.New(nil, requires(pairs...))

			// X1 requires X2 ... requires Xn; propose Xn requires X1.
			res := WouldCreateCycle(g, lec(fmt.Sprintf("x%d", n)), lec("x1"))
			assert.True(t, res.HasCycle)
			if diff := cmp.Diff(want, res.Path); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWouldCreateCycle_FollowsStoredOrder(t *testing.T) {
	// d has two routes to a; the first stored prerequisite is explored first.
	g := graph.New(nil, requires(
		[2]string{"d", "b"},
		[2]string{"d", "c"},
		[2]string{"b", "a"},
		[2]string{"c", "a"},
	))

	res := WouldCreateCycle(g, lec("a"), lec("d"))
	assert.True(t, res.HasCycle)
	assert.Equal(t, []nodeid.Address{lec("d"), lec("b"), lec("a")}, res.Path)
}

func TestWouldCreateCycle_ReportsExistingCycle(t *testing.T) {
	// b and c already form a loop that the proposed edge does not touch.
	g := graph.New(nil, requires(
		[2]string{"a", "b"},
		[2]string{"b", "c"},
		[2]string{"c", "b"},
	))

	res := WouldCreateCycle(g, lec("z"), lec("a"))
	assert.True(t, res.HasCycle)
	assert.Equal(t, []nodeid.Address{lec("b"), lec("c"), lec("b")}, res.Path)
}

func TestWouldCreateCycle_DiamondWithoutCycle(t *testing.T) {
	g := graph.New(nil, requires(
		[2]string{"d", "b"},
		[2]string{"d", "c"},
		[2]string{"b", "a"},
		[2]string{"c", "a"},
	))
	res := WouldCreateCycle(g, lec("e"), lec("d"))
	assert.False(t, res.HasCycle)
}

func TestWouldCreateCycle_DeepChainDoesNotRecurse(t *testing.T) {
	const depth = 20000
	pairs := make([][2]string, 0, depth)
	for i := 0; i < depth; i++ {
		pairs = append(pairs, [2]string{fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1)})
	}
	g := graph.New(nil, requires(pairs...))

	res := WouldCreateCycle(g, lec(fmt.Sprintf("n%d", depth)), lec("n0"))
	assert.True(t, res.HasCycle)
	assert.Len(t, res.Path, depth+1)
}

// In a graph where node i only requires nodes j < i there is no path from a
// lower index to a higher one, so making the higher node require the lower
// one can never close a cycle.
func TestWouldCreateCycle_PropertyNoPathNoCycle(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 50; trial++ {
		const size = 25
		var pairs [][2]string
		for i := 1; i < size; i++ {
			for j := 0; j < i; j++ {
				if rng.IntN(4) == 0 {
					pairs = append(pairs, [2]string{fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", j)})
				}
			}
		}
		g := graph.New(nil, requires(pairs...))

		a := rng.IntN(size - 1)
		b := a + 1 + rng.IntN(size-a-1)
		res := WouldCreateCycle(g, lec(fmt.Sprintf("n%d", b)), lec(fmt.Sprintf("n%d", a)))
		assert.False(t, res.HasCycle, "trial %d: n%d requires n%d", trial, b, a)

		// The reverse proposal is a cycle exactly when b already reaches a.
		rev := WouldCreateCycle(g, lec(fmt.Sprintf("n%d", a)), lec(fmt.Sprintf("n%d", b)))
		if rev.HasCycle {
			assert.Equal(t, lec(fmt.Sprintf("n%d", b)), rev.Path[0])
			assert.Equal(t, lec(fmt.Sprintf("n%d", a)), rev.Path[len(rev.Path)-1])
		}
	}
}

func TestDescribe(t *testing.T) {
	g := graph.New([]node.Node{
		{ID: lec("aristotle"), Label: "Aristotle"},
		{ID: lec("plato"), Label: "Plato"},
	}, nil)

	got := Describe([]nodeid.Address{lec("aristotle"), lec("plato"), lec("unknown")}, g)
	assert.Equal(t, []string{"Aristotle (lecture.aristotle)", "Plato (lecture.plato)", "lecture.unknown"}, got)
	assert.Empty(t, Describe(nil, g))
}
