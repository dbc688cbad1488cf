package layout

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrMissingPosition is returned when a fixed node has no initial position.
var ErrMissingPosition = errors.New("layout: fixed node without initial position")

// SpringOptions tunes the Fruchterman-Reingold layout.
type SpringOptions struct {
	// K is the optimal distance between nodes; 0 means 1/sqrt(n).
	K float64
	// Iterations caps the number of cooling steps; 0 means 50.
	Iterations int
	// Threshold stops early once the mean node displacement drops below
	// it; 0 means 1e-4.
	Threshold float64
	Seed      int64
	// Initial seeds positions; nodes without an entry start at random.
	Initial map[string]Vec
	// Fixed nodes keep their Initial position.
	Fixed []string
	// Temperature caps the first step of a node; 0 means a tenth of the
	// starting extent. It cools linearly to zero.
	Temperature float64
	// Scale and Center rescale the result when nothing is fixed.
	// Scale 0 means 1.
	Scale  float64
	Center Vec
}

// Spring computes a force-directed layout of g. Edges attract with a
// force proportional to weight × distance²/K, every pair repels with K²/d.
//
// Without fixed nodes the positions are centered and rescaled so the
// widest coordinate spans [-Scale, Scale] around Center. With fixed nodes
// positions stay in the units of Initial.
func Spring(g *Graph, opts SpringOptions) (map[string]Vec, error) {
	n := g.Len()
	out := make(map[string]Vec, n)
	if n == 0 {
		return out, nil
	}
	if n == 1 && len(opts.Fixed) == 0 {
		out[g.nodes[0].ID] = opts.Center
		return out, nil
	}

	iterations := opts.Iterations
	if iterations == 0 {
		iterations = 50
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = 1e-4
	}
	k := opts.K
	if k == 0 {
		k = math.Sqrt(1 / float64(n))
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	fixed := make([]bool, n)
	for _, id := range opts.Fixed {
		i, ok := g.index[id]
		if !ok {
			return nil, fmt.Errorf("layout: fixed node %q not in graph", id)
		}
		if _, ok := opts.Initial[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingPosition, id)
		}
		fixed[i] = true
	}

	pos := initialPositions(g, opts)
	adj := g.adjacency()

	t := opts.Temperature
	if t == 0 {
		t = extent(pos) * 0.1
	}
	dt := t / float64(iterations+1)

	disp := make([]Vec, n)
	for iter := 0; iter < iterations; iter++ {
		for i := range disp {
			disp[i] = Vec{}
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				delta := pos[i].sub(pos[j])
				d := math.Max(delta.norm(), 0.01)
				f := k*k/(d*d) - adj[i][j]*d/k
				disp[i] = disp[i].add(delta.scale(f))
			}
		}

		var moved float64
		for i := 0; i < n; i++ {
			if fixed[i] {
				continue
			}
			length := disp[i].norm()
			if length < 0.01 {
				length = 0.1
			}
			step := disp[i].scale(t / length)
			pos[i] = pos[i].add(step)
			moved += step.X*step.X + step.Y*step.Y
		}
		t -= dt
		if math.Sqrt(moved)/float64(n) < threshold {
			break
		}
	}

	if len(opts.Fixed) == 0 {
		rescale(pos, scale, opts.Center)
	}
	for i, node := range g.nodes {
		out[node.ID] = pos[i]
	}
	return out, nil
}

func initialPositions(g *Graph, opts SpringOptions) []Vec {
	rng := rand.New(rand.NewSource(opts.Seed))
	n := g.Len()
	pos := make([]Vec, n)

	// random starts are spread over the domain the caller already uses
	dom := 1.0
	if len(opts.Initial) > 0 {
		dom = math.Inf(-1)
		for _, p := range opts.Initial {
			dom = math.Max(dom, math.Max(p.X, p.Y))
		}
	}
	for i, node := range g.nodes {
		if p, ok := opts.Initial[node.ID]; ok {
			pos[i] = p
			// keep the random stream aligned with node order
			rng.Float64()
			rng.Float64()
			continue
		}
		pos[i] = Vec{rng.Float64()*dom + opts.Center.X, rng.Float64()*dom + opts.Center.Y}
	}
	return pos
}

func extent(pos []Vec) float64 {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

func rescale(pos []Vec, scale float64, center Vec) {
	var mean Vec
	for _, p := range pos {
		mean = mean.add(p)
	}
	mean = mean.scale(1 / float64(len(pos)))

	var lim float64
	for i := range pos {
		pos[i] = pos[i].sub(mean)
		lim = math.Max(lim, math.Max(math.Abs(pos[i].X), math.Abs(pos[i].Y)))
	}
	for i := range pos {
		if lim > 0 {
			pos[i] = pos[i].scale(scale / lim)
		}
		pos[i] = pos[i].add(center)
	}
}
