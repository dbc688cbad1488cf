package figures

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/palette"
)

// ============================================================
// Slide 10: decision tree
// ============================================================

type treeNode struct {
	x, y  float64
	text  string
	color drawing.Color
}

func decisionNodes() []treeNode {
	return []treeNode{
		{0.5, 0.9, "Is this comment, behavior, or practice potentially problematic?", viridis(0)},

		{0.3, 0.75, "Does it relate to an\naspect of marginalized identity?", viridis(1)},
		{0.7, 0.75, "Does it make assumptions\nabout an individual or group?", viridis(1)},

		{0.15, 0.6, "Could it reinforce\nstereotypes?", viridis(2)},
		{0.4, 0.6, "Does it dismiss or\ninvalidate experiences?", viridis(2)},
		{0.6, 0.6, "Does it overemphasize or\nexoticize differences?", viridis(2)},
		{0.85, 0.6, "Does it impose dominant\ngroup norms?", viridis(2)},

		{0.15, 0.4, "Example: \"You're so articulate\"\n(implies surprise based on identity)", viridis(3)},
		{0.4, 0.4, "Example: \"I don't see color\"\n(invalidates racial experiences)", viridis(3)},
		{0.6, 0.4, "Example: \"Your hair is so interesting.\nCan I touch it?\"", viridis(3)},
		{0.85, 0.4, "Example: \"That food smells strange.\nCould you eat it elsewhere?\"", viridis(3)},

		{0.15, 0.25, "LIKELY MICROINSULT", accent(1)},
		{0.4, 0.25, "LIKELY MICROINVALIDATION", accent(2)},
		{0.6, 0.25, "LIKELY MICROINSULT", accent(1)},
		{0.85, 0.25, "LIKELY MICROASSAULT", accent(0)},

		{0.15, 0.15, "Response: \"What do you mean by 'articulate'?\nWhat were you expecting?\"", accent(5)},
		{0.4, 0.15, "Response: \"While that's well-intentioned,\nnot 'seeing' race can erase important experiences\"", accent(5)},
		{0.6, 0.15, "Response: \"Please don't comment on or touch\npeople's physical features\"", accent(5)},
		{0.85, 0.15, "Response: \"Food preferences vary.\nLet's ensure all cultural foods are welcome\"", accent(5)},
	}
}

// decisionEdges links each question to its follow-ups; below the third
// level every column runs straight down.
var decisionEdges = [][2]canvas.Point{
	{{X: 0.5, Y: 0.9}, {X: 0.3, Y: 0.75}},
	{{X: 0.5, Y: 0.9}, {X: 0.7, Y: 0.75}},
	{{X: 0.3, Y: 0.75}, {X: 0.15, Y: 0.6}},
	{{X: 0.3, Y: 0.75}, {X: 0.4, Y: 0.6}},
	{{X: 0.7, Y: 0.75}, {X: 0.6, Y: 0.6}},
	{{X: 0.7, Y: 0.75}, {X: 0.85, Y: 0.6}},
}

func decisionConnections() [][2]canvas.Point {
	edges := append([][2]canvas.Point(nil), decisionEdges...)
	levels := []float64{0.6, 0.4, 0.25, 0.15}
	for _, x := range []float64{0.15, 0.4, 0.6, 0.85} {
		for i := 0; i+1 < len(levels); i++ {
			edges = append(edges, [2]canvas.Point{{X: x, Y: levels[i]}, {X: x, Y: levels[i+1]}})
		}
	}
	return edges
}

func drawDecisionTree(c *canvas.Canvas, _ Env) error {
	arrow := canvas.ArrowStyle{
		Line:    outline(palette.Alpha(gray, 0.7), 1),
		Rad:     0.1,
		ShrinkA: 2,
		ShrinkB: 2,
	}
	for _, e := range decisionConnections() {
		c.Arrow(e[0], e[1], arrow)
	}

	nodes := decisionNodes()
	for _, n := range nodes {
		ts := canvas.TextStyle{Size: 8, HAlign: canvas.AlignCenter, VAlign: canvas.AlignTop}
		c.Text(canvas.Pt(n.x, n.y-0.05), n.text, boxed(ts, roundBox(white, n.color, 0.7, 0.3, 1)))
	}
	for _, n := range nodes {
		c.Circle(canvas.Pt(n.x, n.y), 0.03, canvas.Style{Fill: n.color})
	}

	c.SupTitle("Decision Tree for Identifying Potential Microaggressions", 0.98, titleSize)
	c.Text(canvas.Pt(0.5, 0.05),
		"Note: This simplified decision tree is a starting point for recognition.\nAlways consider context, power dynamics, and individual experiences.",
		canvas.TextStyle{Size: 9, HAlign: canvas.AlignCenter, Italic: true})
	return nil
}

// ============================================================
// Slide 11: response strategies
// ============================================================

var responseScenarios = []struct {
	x     float64
	title string
}{
	{0.2, "WHEN WITNESSING\nMICROAGGRESSIONS"},
	{0.5, "WHEN COMMITTING\nMICROAGGRESSIONS"},
	{0.8, "WHEN EXPERIENCING\nMICROAGGRESSIONS"},
}

// responseScripts holds three example scripts per scenario, top to bottom.
var responseScripts = [][]string{
	{
		"QUESTION:\n\"Can you explain what you meant by that comment?\"",
		"PAUSE:\n\"Let's take a moment to consider the impact of that statement.\"",
		"EDUCATE:\n\"I've learned that comments like that can reinforce stereotypes\nbecause...\"",
	},
	{
		"LISTEN:\n\"Thank you for pointing that out. I want to understand better.\"",
		"ACKNOWLEDGE:\n\"I see how my comment had an impact I didn't intend.\nI apologize.\"",
		"CHANGE:\n\"I'm going to be more mindful about this. Could you suggest\na better way I could have expressed that?\"",
	},
	{
		"ASSESS:\n\"Is this a safe moment to respond? What's my goal here?\"",
		"RESPOND:\n\"When you [specific action], it [specific impact]. \nInstead, could you [alternative]?\"",
		"SUPPORT:\n\"I'd like to discuss this with [ally/supervisor/HR]\nto address the pattern.\"",
	},
}

func drawResponses(c *canvas.Canvas, _ Env) error {
	const top = 0.7
	for i, s := range responseScenarios {
		col := accent(i)
		c.Rect(s.x-0.15, top-0.25, 0.3, 0.3, filled(col, col, 0.2, 2))
		c.Text(canvas.Pt(s.x, top), s.title, bold(centered(10)))
	}

	rows := []float64{0.5, 0.35, 0.2}
	for i, s := range responseScenarios {
		for j, script := range responseScripts[i] {
			c.Text(canvas.Pt(s.x, rows[j]), script, boxed(centered(9), roundBox(white, accent(i), 0.9, 0.4, 1.5)))
		}
	}

	c.SupTitle("Response Strategies for Workplace Microaggressions", 0.98, titleSize)
	return nil
}
