package figures

import (
	"math"
	"strconv"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/palette"
	"github.com/Mr-Dark-debug/slidefigs/pkg/timeutil"
)

// ============================================================
// Slide 12: implementation roadmap
// ============================================================

var roadmapStages = []struct {
	x      float64
	name   string
	months string
}{
	{0.2, "AWARENESS STAGE", "Month 1-2"},
	{0.5, "IMPLEMENTATION STAGE", "Month 3-6"},
	{0.8, "INTEGRATION STAGE", "Month 7+"},
}

// roadmapActions lists the leadership (above the path) and team (below)
// actions of each stage.
var roadmapActions = []struct {
	stage int
	y     float64
	title string
	text  string
}{
	{0, 0.8, "LEADERSHIP", "• Education on microaggression impact\n• Commitment to addressing patterns\n• Modeling appropriate responses"},
	{0, 0.3, "TEAM LEVEL", "• Awareness training for all employees\n• Creating common vocabulary\n• Establishing baseline metrics"},
	{1, 0.8, "LEADERSHIP", "• Develop formal response protocols\n• Train managers as first responders\n• Create accountability systems"},
	{1, 0.3, "TEAM LEVEL", "• Practice intervention strategies\n• Implement feedback mechanisms\n• Develop team-specific guidelines"},
	{2, 0.8, "LEADERSHIP", "• Integrate into performance evaluations\n• Regular climate assessment\n• Continuous improvement processes"},
	{2, 0.3, "TEAM LEVEL", "• Peer coaching and mentoring\n• Regular reflection practices\n• Community of practice development"},
}

func drawRoadmap(c *canvas.Canvas, _ Env) error {
	const path = 0.5
	c.Line(canvas.Pt(0.1, path), canvas.Pt(0.9, path), outline(palette.Alpha(black, 0.3), 3))

	for _, a := range roadmapActions {
		x := roadmapStages[a.stage].x
		col := accent(a.stage)
		c.Rect(x-0.15, a.y-0.15, 0.3, 0.3, filled(col, col, 0.1, 1.5))
		c.Text(canvas.Pt(x, a.y+0.1), a.title, bold(centered(9)))
		c.Text(canvas.Pt(x, a.y-0.02), a.text, centered(8))
	}

	// dotted leaders from the path to the nearest box edge
	dotted := canvas.Style{Stroke: palette.Alpha(black, 0.5), Width: 1, Dash: []float64{1, 1.65}}
	for _, a := range roadmapActions {
		x := roadmapStages[a.stage].x
		edge := a.y + 0.15
		if a.y < path {
			edge = a.y - 0.15
		}
		c.Line(canvas.Pt(x, path), canvas.Pt(x, edge), dotted)
	}

	for i, s := range roadmapStages {
		c.Circle(canvas.Pt(s.x, path), 0.05, canvas.Style{Fill: accent(i), Stroke: black, Width: 1})
		c.Text(canvas.Pt(s.x, 0.6), s.name, bold(centered(12)))
		num := bold(centered(10))
		num.Color = white
		c.Text(canvas.Pt(s.x, path), strconv.Itoa(i+1), num)
		c.Text(canvas.Pt(s.x, 0.1), s.months, italic(centered(9)))
	}

	c.SupTitle("Organizational Implementation Roadmap for Addressing Microaggressions", 0.98, titleSize)
	return nil
}

// ============================================================
// Slide 13: personal development plan
// ============================================================

var developmentFocus = []struct {
	x     float64
	title string
	goals [3]struct{ text, when string }
}{
	{0.2, "KNOWLEDGE DEVELOPMENT", [3]struct{ text, when string }{
		{"Goal 1: Read two additional books on microaggression research", "Jul 2025"},
		{"Goal 2: Subscribe to DEI research journal for ongoing updates", "Jun 2025"},
		{"Goal 3: Join online community focused on inclusive practices", "Aug 2025"},
	}},
	{0.5, "SKILL BUILDING", [3]struct{ text, when string }{
		{"Goal 1: Practice 'Question, Pause, Educate' intervention in 3 scenarios", "Jun-Jul 2025"},
		{"Goal 2: Develop personal script library for common situations", "Jul 2025"},
		{"Goal 3: Attend advanced workshop on facilitating difficult conversations", "Sep 2025"},
	}},
	{0.8, "APPLICATION & MEASUREMENT", [3]struct{ text, when string }{
		{"Goal 1: Keep reflection journal documenting interventions and outcomes", "Ongoing"},
		{"Goal 2: Request feedback from 3 colleagues on communication patterns", "Aug 2025"},
		{"Goal 3: Conduct personal climate assessment in team environment", "Oct 2025"},
	}},
}

var progressHeaders = []string{"Metric", "Q2 2025", "Q3 2025", "Q4 2025", "Q1 2026"}

var progressRows = [][]string{
	{"Goal completion rate:", "0/9 (0%)", "3/9 (33%)", "6/9 (67%)", "9/9 (100%)"},
	{"Self-assessment rating:", "Awareness", "Development", "Competence", "Mastery"},
	{"Intervention confidence:", "Low", "Moderate", "High", "Expert"},
}

func drawDevelopmentPlan(c *canvas.Canvas, env Env) error {
	// clipboard and its clip
	c.Rect(0.05, 0.05, 0.9, 0.85, canvas.Style{Fill: palette.MustNamed("bisque"), Stroke: brown, Width: 2})
	c.Rect(0.4, 0.9, 0.2, 0.05, canvas.Style{Fill: palette.MustNamed("silver"), Stroke: gray, Width: 1})

	c.Text(canvas.Pt(0.5, 0.85), "PERSONAL DEVELOPMENT PLAN", heading(14))
	c.Text(canvas.Pt(0.5, 0.81), "Microaggression Awareness and Response Development",
		canvas.TextStyle{Size: 10, Italic: true, HAlign: canvas.AlignCenter})
	c.Text(canvas.Pt(0.1, 0.77), "Date: "+timeutil.FormatLongDate(env.Now), canvas.TextStyle{Size: 9})

	goalRows := []float64{0.65, 0.55, 0.45}
	for i, f := range developmentFocus {
		col := accent(i)
		c.Rect(f.x-0.15, 0.7-0.025, 0.3, 0.05, filled(col, col, 0.3, 1.5))
		c.Text(canvas.Pt(f.x, 0.7), f.title, bold(centered(10)))

		for j, g := range f.goals {
			c.Text(canvas.Pt(f.x-0.15, goalRows[j]), g.text, canvas.TextStyle{Size: 8, VAlign: canvas.AlignMiddle})
			c.Text(canvas.Pt(f.x+0.12, goalRows[j]), g.when,
				canvas.TextStyle{Size: 8, VAlign: canvas.AlignMiddle, Italic: true, Color: col})
		}
	}

	c.Rect(0.1, 0.15, 0.8, 0.2, canvas.Style{Fill: white, Stroke: brown, Width: 1})
	c.Text(canvas.Pt(0.5, 0.32), "PROGRESS TRACKING", heading(10))

	columns := []float64{0.15, 0.3, 0.45, 0.6, 0.75}
	for i, h := range progressHeaders {
		c.Text(canvas.Pt(columns[i], 0.28), h, heading(8))
	}
	for i, row := range progressRows {
		y := 0.24 - float64(i)*0.03
		for j, cell := range row {
			c.Text(canvas.Pt(columns[j], y), cell, canvas.TextStyle{Size: 7, HAlign: canvas.AlignCenter})
		}
	}

	c.HLine(0.1, 0.1, 0.4, outline(black, 1))
	c.Text(canvas.Pt(0.25, 0.08), "Personal Signature", canvas.TextStyle{Size: 8, HAlign: canvas.AlignCenter})
	c.Text(canvas.Pt(0.7, 0.1), "Next Review Date: October 15, 2025", canvas.TextStyle{Size: 8, HAlign: canvas.AlignCenter})
	return nil
}

// ============================================================
// Slide 14: continuous improvement cycle
// ============================================================

var improvementStages = []struct {
	name, detail string
	at           canvas.Point
}{
	{"RECOGNIZE", "• Identify potential microaggressions\n• Notice patterns in environments\n• Understand impact on individuals\n• Recognize own biases and behaviors", canvas.Pt(0.5, 0.9)},
	{"RESPOND", "• Apply appropriate intervention strategies\n• Consider context and safety\n• Practice allyship when witnessing\n• Use non-defensive communication", canvas.Pt(0.9, 0.5)},
	{"REFLECT", "• Analyze effectiveness of responses\n• Seek feedback from affected parties\n• Document patterns and outcomes\n• Connect to broader systems", canvas.Pt(0.5, 0.1)},
	{"REVISE", "• Adjust strategies based on feedback\n• Develop new communication skills\n• Implement structural changes\n• Share learning with others", canvas.Pt(0.1, 0.5)},
}

func drawImprovementCycle(c *canvas.Canvas, _ Env) error {
	const (
		radius     = 0.3
		nodeRadius = 0.08
		bulge      = 0.4
	)
	center := canvas.Pt(0.5, 0.5)
	n := len(improvementStages)
	step := 2 * math.Pi / float64(n)
	onRing := func(angle, r float64) canvas.Point {
		return canvas.Pt(center.X+r*math.Cos(angle), center.Y+r*math.Sin(angle))
	}

	c.Circle(center, radius, canvas.Style{Stroke: palette.Alpha(black, 0.7), Width: 2})

	// arrows leave and enter at the node rims so the heads stay visible
	gap := math.Asin(nodeRadius/radius) * 1.2
	arrow := canvas.ArrowStyle{Line: outline(black, 1.5), HeadLength: 6, HeadWidth: 3}
	for i := 0; i < n; i++ {
		a := math.Pi/4 + float64(i)*step
		c.CurvedArrow(onRing(a+gap, radius), onRing(a+step/2, bulge), onRing(a+step-gap, radius), arrow)
	}

	for i, s := range improvementStages {
		a := math.Pi/4 + float64(i)*step
		p := onRing(a, radius)
		c.Circle(p, nodeRadius, filled(accent(i), black, 0.8, 1))
		c.Text(p, s.name, bold(centered(10)))
	}

	for i, s := range improvementStages {
		c.Text(s.at, s.detail, boxed(centered(9), roundBox(white, accent(i), 0.9, 0.3, 1)))
	}

	c.Text(center, "CONTINUOUS\nIMPROVEMENT", bold(centered(12)))
	c.SupTitle("Continuous Improvement Cycle for Microaggression Awareness", 0.98, titleSize)
	return nil
}
