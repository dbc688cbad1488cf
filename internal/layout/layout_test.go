package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starGraph(t *testing.T, leaves int) *Graph {
	t.Helper()
	g := NewGraph()
	g.AddNode(Node{ID: "hub", Size: 2000})
	for i := 0; i < leaves; i++ {
		id := string(rune('a' + i))
		g.AddNode(Node{ID: id, Size: 500})
		require.NoError(t, g.AddEdge("hub", id, 1))
	}
	return g
}

func TestGraphKeepsInsertionOrder(t *testing.T) {
	g := starGraph(t, 3)
	nodes := g.Nodes()
	require.Len(t, nodes, 4)
	assert.Equal(t, []string{"hub", "a", "b", "c"}, []string{nodes[0].ID, nodes[1].ID, nodes[2].ID, nodes[3].ID})
	assert.Len(t, g.Edges(), 3)

	g.AddNode(Node{ID: "a", Size: 42})
	n, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, 42.0, n.Size)
	assert.Equal(t, 4, g.Len())
}

func TestAddEdgeUnknownNode(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	assert.Error(t, g.AddEdge("a", "zzz", 1))
}

func TestSpringIsDeterministic(t *testing.T) {
	g := starGraph(t, 6)
	first, err := Spring(g, SpringOptions{K: 0.5, Seed: 42})
	require.NoError(t, err)
	second, err := Spring(g, SpringOptions{K: 0.5, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSpringRescalesWithoutFixedNodes(t *testing.T) {
	g := starGraph(t, 6)
	pos, err := Spring(g, SpringOptions{Seed: 7, Scale: 2, Center: Vec{1, 1}})
	require.NoError(t, err)

	var widest float64
	for _, p := range pos {
		widest = math.Max(widest, math.Max(math.Abs(p.X-1), math.Abs(p.Y-1)))
	}
	assert.InDelta(t, 2, widest, 1e-9)
}

func TestSpringKeepsFixedNodes(t *testing.T) {
	g := starGraph(t, 5)
	initial := map[string]Vec{"hub": {0.5, 0.5}, "a": {0.8, 0.5}}
	pos, err := Spring(g, SpringOptions{
		K:       0.5,
		Seed:    42,
		Initial: initial,
		Fixed:   []string{"hub", "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, initial["hub"], pos["hub"])
	assert.Equal(t, initial["a"], pos["a"])
	assert.Len(t, pos, 6)

	// leaves are pushed away from the hub rather than collapsing onto it
	for _, id := range []string{"b", "c", "d", "e"} {
		assert.Greater(t, pos[id].sub(pos["hub"]).norm(), 0.05, id)
	}
}

func TestSpringFixedNeedsPosition(t *testing.T) {
	g := starGraph(t, 2)
	_, err := Spring(g, SpringOptions{Fixed: []string{"hub"}})
	assert.ErrorIs(t, err, ErrMissingPosition)

	_, err = Spring(g, SpringOptions{Fixed: []string{"nope"}, Initial: map[string]Vec{"nope": {}}})
	assert.Error(t, err)
}

func TestSpringTrivialGraphs(t *testing.T) {
	pos, err := Spring(NewGraph(), SpringOptions{})
	require.NoError(t, err)
	assert.Empty(t, pos)

	g := NewGraph()
	g.AddNode(Node{ID: "only"})
	pos, err = Spring(g, SpringOptions{Center: Vec{3, 4}})
	require.NoError(t, err)
	assert.Equal(t, Vec{3, 4}, pos["only"])
}

func TestRadial(t *testing.T) {
	pts := Radial(Vec{0.5, 0.5}, 0.3, 4, 0)
	require.Len(t, pts, 4)
	assert.InDelta(t, 0.8, pts[0].X, 1e-9)
	assert.InDelta(t, 0.5, pts[0].Y, 1e-9)
	assert.InDelta(t, 0.5, pts[1].X, 1e-9)
	assert.InDelta(t, 0.8, pts[1].Y, 1e-9)
	for _, p := range pts {
		assert.InDelta(t, 0.3, p.sub(Vec{0.5, 0.5}).norm(), 1e-9)
	}
}

func TestClamp(t *testing.T) {
	pos := map[string]Vec{"in": {0.4, 0.6}, "out": {-1, 3}}
	Clamp(pos, 0.05, 0.95)
	assert.Equal(t, Vec{0.4, 0.6}, pos["in"])
	assert.Equal(t, Vec{0.05, 0.95}, pos["out"])
}

func TestSpringTemperatureBoundsMovement(t *testing.T) {
	g := starGraph(t, 4)
	initial := map[string]Vec{"hub": {0.5, 0.5}, "a": {0.6, 0.5}, "b": {0.4, 0.5}, "c": {0.5, 0.6}, "d": {0.5, 0.4}}
	pos, err := Spring(g, SpringOptions{
		K:           0.5,
		Iterations:  10,
		Temperature: 0.001,
		Initial:     initial,
		Fixed:       []string{"hub"},
	})
	require.NoError(t, err)

	// steps cool from 0.001, so ten of them move a node at most 0.01
	for id, start := range initial {
		moved := math.Hypot(pos[id].X-start.X, pos[id].Y-start.Y)
		assert.LessOrEqual(t, moved, 0.01+1e-12, id)
	}
}
