// Package layout positions the nodes of small undirected graphs.
package layout

import (
	"fmt"
	"math"
)

// Vec is a 2-D position.
type Vec struct{ X, Y float64 }

func (v Vec) add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) scale(f float64) Vec { return Vec{v.X * f, v.Y * f} }
func (v Vec) norm() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec) String() string { return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y) }

// Node is a graph vertex. Size and Group are drawing hints the layout
// itself ignores.
type Node struct {
	ID    string
	Size  float64
	Group int
}

// Edge connects two nodes with a weight; heavier edges pull harder.
type Edge struct {
	U, V   string
	Weight float64
}

// Graph is an undirected graph that remembers insertion order, so that
// layouts and drawings are reproducible.
type Graph struct {
	nodes []Node
	index map[string]int
	edges []Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode inserts n, or updates its attributes when the ID already exists.
func (g *Graph) AddNode(n Node) {
	if i, ok := g.index[n.ID]; ok {
		g.nodes[i] = n
		return
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// AddEdge connects u and v. Both must already exist.
func (g *Graph) AddEdge(u, v string, weight float64) error {
	if _, ok := g.index[u]; !ok {
		return fmt.Errorf("edge %q-%q: unknown node %q", u, v, u)
	}
	if _, ok := g.index[v]; !ok {
		return fmt.Errorf("edge %q-%q: unknown node %q", u, v, v)
	}
	g.edges = append(g.edges, Edge{U: u, V: v, Weight: weight})
	return nil
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// adjacency returns the dense weight matrix in node order. Parallel edges
// keep the last weight.
func (g *Graph) adjacency() [][]float64 {
	n := len(g.nodes)
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
	}
	for _, e := range g.edges {
		i, j := g.index[e.U], g.index[e.V]
		a[i][j] = e.Weight
		a[j][i] = e.Weight
	}
	return a
}
