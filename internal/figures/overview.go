package figures

import (
	"strconv"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/palette"
)

// ============================================================
// Slide 2: iceberg
// ============================================================

func drawIceberg(c *canvas.Canvas, _ Env) error {
	c.SetAxesRect(0.02, 0.02, 0.98, 0.98)
	c.SetLimits(0.5, 11.5, -10, 2)

	// everything below the waterline is sea
	c.HSpan(-10, 0, filled(palette.MustNamed("lightblue"), palette.MustNamed("lightblue"), 0.5, 0))

	xs := []float64{2, 4, 6, 8, 10, 11, 9, 8, 7, 5, 2}
	above := []float64{0, 0.5, 0, 1, 0, -1, 0, -0.5, -1, 0, 0}
	below := []float64{0, -2, -4, -5, -8, -9, -7, -6, -4, -3, 0}
	c.Polygon(points(xs, above), filled(white, black, 0.9, 1))
	c.Polygon(points(xs, below), filled(palette.MustNamed("lightblue"), black, 0.7, 1))

	c.Text(canvas.Pt(6, 0.8), "VISIBLE DISCRIMINATION", heading(14))
	c.Text(canvas.Pt(6, 0.3),
		"- Explicit racism, sexism, ableism\n- Open hostility\n- Conscious bias\n- Harassment",
		icebergBullets)

	c.Text(canvas.Pt(6, -3), "MICROAGGRESSIONS", heading(14))
	c.Text(canvas.Pt(6, -5),
		"- Subtle comments\n- Unconscious biases\n- Environmental slights\n- Exclusionary practices\n- Invalidating experiences",
		icebergBullets)

	c.Text(canvas.Pt(1, 0.1), "Surface Level", canvas.TextStyle{Size: 12, VAlign: canvas.AlignBottom})
	return nil
}

// Both bullet blocks hang on the baseline of their last line.
var icebergBullets = canvas.TextStyle{Size: 10, HAlign: canvas.AlignCenter, VAlign: canvas.AlignBaseline}

func points(xs, ys []float64) []canvas.Point {
	out := make([]canvas.Point, len(xs))
	for i := range xs {
		out[i] = canvas.Pt(xs[i], ys[i])
	}
	return out
}

// ============================================================
// Slide 3: three-column chart of types
// ============================================================

var microaggressionTypes = []struct {
	title, desc, examples string
}{
	{
		"MICROASSAULTS",
		"Explicit, intentional\ndiscriminatory actions",
		"• Using offensive slurs\n• Deliberately ignoring colleagues\n• Explicit stereotyping\n• Displaying offensive symbols\n• Exclusionary behaviors",
	},
	{
		"MICROINSULTS",
		"Subtle rudeness or insensitivity\nthat demeans identity",
		"• \"You're so articulate\"\n• \"Where are you really from?\"\n• Avoiding certain colleagues\n• \"You don't look disabled\"\n• Assuming incompetence",
	},
	{
		"MICROINVALIDATIONS",
		"Comments that nullify the\nexperiences of marginalized groups",
		"• \"I don't see color\"\n• \"Everyone can succeed if they try\"\n• \"It was just a joke\"\n• \"You're being too sensitive\"\n• \"We're all one human race\"",
	},
}

func drawTypes(c *canvas.Canvas, _ Env) error {
	const width = 0.3
	positions := []float64{0.16, 0.5, 0.84}

	for i, t := range microaggressionTypes {
		x := positions[i]
		col := accent(i)

		c.Rect(x-width/2, 0.2, width, 0.7, canvas.Style{
			Fill:   palette.Alpha(col, 0.2),
			Stroke: palette.Alpha(col, 0.2),
			Width:  2,
		})
		c.Text(canvas.Pt(x, 0.9), t.title, heading(14))
		c.Text(canvas.Pt(x, 0.8), t.desc, italic(centered(12)))
		c.Line(canvas.Pt(x-width/2+0.02, 0.75), canvas.Pt(x+width/2-0.02, 0.75), outline(col, 2))
		c.Text(canvas.Pt(x, 0.53), t.examples, centered(11))
	}

	c.SupTitle("Types of Microaggressions in the Workplace", 0.98, titleSize)
	return nil
}

// ============================================================
// Slide 4: research timeline
// ============================================================

var researchEvents = []struct {
	year, y float64
	text    string
}{
	{1970, 0.5, "Dr. Chester Pierce\ncoins term 'microaggression'\nfocusing on racial experiences"},
	{1986, -0.5, "Early studies on 'everyday racism'\nby Philomena Essed"},
	{2007, 0.5, "Dr. Derald Wing Sue expands concept\nto include all marginalized identities"},
	{2010, -0.5, "Research expands into workplace\nand organizational contexts"},
	{2015, 0.5, "Increased focus on intersectionality\nand multiple identity dimensions"},
	{2020, -0.5, "Growth in research on intervention\nand response strategies"},
	{2025, 0.5, "Current understanding incorporates\nintersectionality, contextual factors,\nand organizational impact"},
}

func drawTimeline(c *canvas.Canvas, _ Env) error {
	const start, end = 1970, 2025
	c.SetLimits(start-5, end+5, -1, 1)

	axis := outline(black, 2)
	c.Line(canvas.Pt(start, 0), canvas.Pt(end, 0), axis)

	// decade ticks, with the final one moved to the present
	years := []int{1970, 1980, 1990, 2000, 2010, 2025}
	for _, y := range years {
		c.Line(canvas.Pt(float64(y), -0.1), canvas.Pt(float64(y), 0.1), axis)
		c.Text(canvas.Pt(float64(y), -0.3), strconv.Itoa(y), canvas.TextStyle{HAlign: canvas.AlignCenter})
	}

	for i, ev := range researchEvents {
		c.Line(canvas.Pt(ev.year, 0), canvas.Pt(ev.year, ev.y), outline(accent(i), 1.5))
	}
	for i, ev := range researchEvents {
		c.Marker(canvas.Pt(ev.year, 0), 100, canvas.Style{Fill: accent(i), Stroke: black, Width: 1})
	}
	for i, ev := range researchEvents {
		ts := boxed(centered(9), roundBox(white, accent(i), 0.7, 0.5, 1))
		ts.HaloColor = white
		ts.HaloWidth = 5
		c.Text(canvas.Pt(ev.year, ev.y), ev.text, ts)
	}

	c.SupTitle("Evolution of Microaggression Research", 0.95, titleSize)
	return nil
}

// ============================================================
// Slide 5: ripple effects
// ============================================================

var rippleImpacts = []struct {
	x, y float64
	text string
	ring int
}{
	{4.5, 3.8, "• Psychological stress\n• Decreased engagement\n• Reduced confidence", 1},
	{3.0, 5.5, "• Communication barriers\n• Reduced collaboration\n• Loss of diverse perspectives", 2},
	{7.0, 4.5, "• Lower psychological safety\n• Strained relationships\n• Limited idea sharing", 2},
	{2.0, 7.0, "• $15-30K turnover cost\n  per employee", 3},
	{5.0, 8.5, "• 15% productivity loss", 3},
	{8.0, 7.0, "• Undermined DEI initiatives\n• Reputation damage\n• Legal liability risk", 3},
	{8.0, 3.0, "• 2.5x higher absenteeism", 3},
	{3.0, 2.0, "• Diminished innovation", 3},
}

func drawRipple(c *canvas.Canvas, _ Env) error {
	c.SetLimits(0, 10, 0, 10)
	c.EqualAspect()

	center := canvas.Pt(5, 5)
	labels := []string{"MICROAGGRESSION\nEVENT", "INDIVIDUAL\nIMPACT", "TEAM\nEFFECT", "ORGANIZATIONAL\nCONSEQUENCES"}
	ringColors := []int{0, 2, 4, 6}

	for i, label := range labels {
		radius := float64(i + 1)
		col := viridis(ringColors[i])
		c.Circle(center, radius, filled(col, col, 0.2, 2))

		at := center
		if i > 0 {
			// label sits just inside the top of its ring
			at = canvas.Pt(center.X, center.Y+radius-0.2)
		}
		c.Text(at, label, bold(centered(10)))
	}

	for _, imp := range rippleImpacts {
		edge := viridis(ringColors[imp.ring])
		c.Text(canvas.Pt(imp.x, imp.y), imp.text, boxed(centered(8), roundBox(white, edge, 0.9, 0.3, 1)))
	}

	c.SupTitle("Ripple Effects of Workplace Microaggressions", 0.98, titleSize)
	return nil
}
