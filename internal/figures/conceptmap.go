package figures

import (
	"fmt"
	"math"
	"sort"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/layout"
	"github.com/Mr-Dark-debug/slidefigs/internal/palette"
)

// ============================================================
// Slide 9: concept map
// ============================================================

const conceptRoot = "Microaggressions"

var conceptCategories = []string{
	"Frameworks", "Theories", "Response\nStrategies", "Case\nStudies", "Personal\nExperiences",
}

var conceptMaterials = []struct{ name, category string }{
	{"Sue's\nCategorization", "Frameworks"},
	{"Nadal's Response\nGuide", "Response\nStrategies"},
	{"Essed's Everyday\nRacism", "Theories"},
	{"Cumulative\nImpact", "Theories"},
	{"Intersectionality", "Theories"},
	{"Healthcare\nSettings", "Case\nStudies"},
	{"Tech Industry", "Case\nStudies"},
	{"Education", "Case\nStudies"},
	{"Perspective\nTaking", "Personal\nExperiences"},
	{"Identity\nReflection", "Personal\nExperiences"},
	{"Ally\nInterventions", "Response\nStrategies"},
	{"Taxonomy of\nMicroaggressions", "Frameworks"},
}

// conceptGraph builds the course-material graph. Group holds the viridis
// index each tier is drawn with.
func conceptGraph() (*layout.Graph, error) {
	g := layout.NewGraph()
	g.AddNode(layout.Node{ID: conceptRoot, Size: 2000, Group: 0})
	for _, cat := range conceptCategories {
		g.AddNode(layout.Node{ID: cat, Size: 1000, Group: 1})
		if err := g.AddEdge(conceptRoot, cat, 2); err != nil {
			return nil, err
		}
	}
	for _, m := range conceptMaterials {
		g.AddNode(layout.Node{ID: m.name, Size: 500, Group: 3})
		if err := g.AddEdge(m.category, m.name, 1); err != nil {
			return nil, err
		}
	}
	return g, nil
}

const (
	conceptRing = 0.3
	// materials sit in an annulus around their category
	materialNear = 0.07
	materialFar  = 0.12
	// angle between neighbouring materials of one category
	materialSpread = 50 * math.Pi / 180
)

// conceptLayout pins the root at the center and the categories on a ring,
// then lets the materials settle around them. The spring layout decides
// how far out each material sits and in which order siblings fan out; the
// fan itself is fixed so labels never collide.
func conceptLayout(g *layout.Graph) (map[string]layout.Vec, error) {
	center := layout.Vec{X: 0.5, Y: 0.5}
	initial := map[string]layout.Vec{conceptRoot: center}
	fixed := []string{conceptRoot}
	for i, p := range layout.Radial(center, conceptRing, len(conceptCategories), 0) {
		initial[conceptCategories[i]] = p
		fixed = append(fixed, conceptCategories[i])
	}

	siblings := materialsByCategory()
	for cat, names := range siblings {
		base := outward(center, initial[cat])
		for j, name := range names {
			initial[name] = polar(initial[cat], materialFar, base+fanAngle(j, len(names)))
		}
	}

	pos, err := layout.Spring(g, layout.SpringOptions{
		K:           conceptRing / math.Sqrt(float64(len(conceptMaterials))),
		Iterations:  50,
		Temperature: 0.02,
		Seed:        42,
		Initial:     initial,
		Fixed:       fixed,
	})
	if err != nil {
		return nil, fmt.Errorf("concept map layout: %w", err)
	}

	for cat, names := range siblings {
		fanOut(pos, center, pos[cat], names)
	}
	layout.Clamp(pos, 0.05, 0.95)
	return pos, nil
}

func materialsByCategory() map[string][]string {
	out := make(map[string][]string, len(conceptCategories))
	for _, m := range conceptMaterials {
		out[m.category] = append(out[m.category], m.name)
	}
	return out
}

// fanOut keeps the spring's ordering and distance of each material but
// places it on an evenly spread fan facing away from the hub.
func fanOut(pos map[string]layout.Vec, center, cat layout.Vec, names []string) {
	base := outward(center, cat)
	type placed struct {
		name  string
		angle float64
		dist  float64
	}
	ps := make([]placed, len(names))
	for i, name := range names {
		p := pos[name]
		dx, dy := p.X-cat.X, p.Y-cat.Y
		rel := math.Remainder(math.Atan2(dy, dx)-base, 2*math.Pi)
		ps[i] = placed{name, rel, math.Hypot(dx, dy)}
	}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].angle < ps[j].angle })

	for j, p := range ps {
		d := math.Min(math.Max(p.dist, materialNear), materialFar)
		pos[p.name] = polar(cat, d, base+fanAngle(j, len(ps)))
	}
}

func fanAngle(j, n int) float64 {
	return (float64(j) - float64(n-1)/2) * materialSpread
}

func outward(center, p layout.Vec) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}

func polar(origin layout.Vec, r, angle float64) layout.Vec {
	return layout.Vec{X: origin.X + r*math.Cos(angle), Y: origin.Y + r*math.Sin(angle)}
}

func drawConceptMap(c *canvas.Canvas, _ Env) error {
	g, err := conceptGraph()
	if err != nil {
		return err
	}
	pos, err := conceptLayout(g)
	if err != nil {
		return err
	}

	for _, e := range g.Edges() {
		u, v := pos[e.U], pos[e.V]
		c.Line(canvas.Pt(u.X, u.Y), canvas.Pt(v.X, v.Y), outline(palette.Alpha(gray, 0.7), e.Weight))
	}

	for _, n := range g.Nodes() {
		p := canvas.Pt(pos[n.ID].X, pos[n.ID].Y)
		col := viridis(n.Group)
		c.Circle(p, math.Sqrt(n.Size)/1000, filled(col, col, 0.7, 1))

		ts := bold(centered(9))
		ts.HaloColor = white
		ts.HaloWidth = 3
		c.Text(p, n.ID, ts)
	}

	c.SupTitle("Concept Map: Course Materials on Microaggressions", 0.98, titleSize)
	return nil
}
