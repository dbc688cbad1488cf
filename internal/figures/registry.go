// Package figures holds the slide figures and the registry that names them.
//
// Every figure is a pure function of its Env: rendering the same figure
// twice with the same Env and Options yields the same bytes.
package figures

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
)

// ErrUnknownFigure is returned when an ID matches no registered figure.
var ErrUnknownFigure = errors.New("unknown figure")

// Env carries the inputs a figure may depend on besides its own data.
type Env struct {
	// Now is stamped on figures that show a date.
	Now time.Time
}

type drawFunc func(c *canvas.Canvas, env Env) error

// Figure describes one slide image.
type Figure struct {
	ID       string
	Slide    int
	Title    string
	Filename string // base name without extension
	Width    float64
	Height   float64 // inches

	draw drawFunc
}

// File returns the output file name for a format.
func (f Figure) File(format canvas.Format) string {
	return f.Filename + format.Ext()
}

// PixelSize returns the image dimensions at a DPI.
func (f Figure) PixelSize(dpi float64) (width, height int) {
	return int(math.Round(f.Width * dpi)), int(math.Round(f.Height * dpi))
}

// Render draws the figure and encodes it to w.
func (f Figure) Render(w io.Writer, opts canvas.Options, env Env) error {
	c, err := canvas.New(f.Width, f.Height, opts)
	if err != nil {
		return fmt.Errorf("figure %s: %w", f.ID, err)
	}
	if err := f.draw(c, env); err != nil {
		return fmt.Errorf("figure %s: %w", f.ID, err)
	}
	return c.Encode(w)
}

var registry = []Figure{
	{ID: "iceberg", Slide: 2, Title: "Iceberg of Microaggressions", Filename: "iceberg_microaggressions", Width: 10, Height: 8, draw: drawIceberg},
	{ID: "types", Slide: 3, Title: "Types of Microaggressions in the Workplace", Filename: "microaggression_types", Width: 12, Height: 8, draw: drawTypes},
	{ID: "timeline", Slide: 4, Title: "Evolution of Microaggression Research", Filename: "microaggression_timeline", Width: 12, Height: 6, draw: drawTimeline},
	{ID: "ripple", Slide: 5, Title: "Ripple Effects of Workplace Microaggressions", Filename: "microaggression_ripple_effects", Width: 10, Height: 10, draw: drawRipple},
	{ID: "testimonials", Slide: 6, Title: "The Individual Impact of Workplace Microaggressions", Filename: "microaggression_testimonials", Width: 12, Height: 8, draw: drawTestimonials},
	{ID: "workplace", Slide: 7, Title: "Common Workplace Microaggressions", Filename: "workplace_microaggressions", Width: 14, Height: 8, draw: drawWorkplace},
	{ID: "journal", Slide: 8, Title: "Personal Reflection Journal: My Journey with Microaggressions", Filename: "reflection_journal", Width: 12, Height: 8, draw: drawJournal},
	{ID: "concept-map", Slide: 9, Title: "Concept Map: Course Materials on Microaggressions", Filename: "concept_map", Width: 12, Height: 10, draw: drawConceptMap},
	{ID: "decision-tree", Slide: 10, Title: "Decision Tree for Identifying Potential Microaggressions", Filename: "decision_tree", Width: 12, Height: 8, draw: drawDecisionTree},
	{ID: "responses", Slide: 11, Title: "Response Strategies for Workplace Microaggressions", Filename: "response_strategies", Width: 12, Height: 8, draw: drawResponses},
	{ID: "roadmap", Slide: 12, Title: "Organizational Implementation Roadmap for Addressing Microaggressions", Filename: "implementation_roadmap", Width: 14, Height: 8, draw: drawRoadmap},
	{ID: "development-plan", Slide: 13, Title: "Personal Development Plan", Filename: "personal_development_plan", Width: 12, Height: 8, draw: drawDevelopmentPlan},
	{ID: "improvement-cycle", Slide: 14, Title: "Continuous Improvement Cycle for Microaggression Awareness", Filename: "continuous_improvement", Width: 10, Height: 10, draw: drawImprovementCycle},
}

// All returns every figure in slide order.
func All() []Figure {
	out := append([]Figure(nil), registry...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slide < out[j].Slide })
	return out
}

// Lookup finds a figure by ID, case-insensitively.
func Lookup(id string) (Figure, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, f := range registry {
		if f.ID == id {
			return f, nil
		}
	}
	return Figure{}, fmt.Errorf("%w: %q", ErrUnknownFigure, id)
}

// Select resolves ids to figures in slide order, dropping duplicates.
// An empty list selects every figure. Any unknown ID fails the whole call.
func Select(ids []string) ([]Figure, error) {
	if len(ids) == 0 {
		return All(), nil
	}
	seen := make(map[string]bool, len(ids))
	var out []Figure
	for _, id := range ids {
		f, err := Lookup(id)
		if err != nil {
			return nil, err
		}
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slide < out[j].Slide })
	return out, nil
}
