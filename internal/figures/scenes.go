package figures

import (
	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/palette"
)

// ============================================================
// Slide 6: testimonials
// ============================================================

var testimonials = []struct {
	x, y float64
	text string
}{
	{0.25, 0.8, "Every time I speak in meetings, I feel\nlike I have to represent my entire race.\nIt's exhausting to constantly worry about\nreinforcing stereotypes."},
	{0.75, 0.8, "I've stopped sharing my pronouns because\nI got tired of the eye rolls and\n'political correctness' comments."},
	{0.25, 0.5, "After being told I'm 'surprisingly articulate'\nseveral times, I now obsess over every\nword I say in professional settings."},
	{0.75, 0.5, "When colleagues constantly mispronounce\nmy name even after corrections, it feels\nlike they don't think I'm worth the effort."},
	{0.25, 0.2, "I stopped sharing cultural perspectives\nafter being told 'we don't do things\nthat way here' one too many times."},
	{0.75, 0.2, "Being complimented for being 'not like other\nwomen in leadership' made me question if\nI'm betraying my authentic self to fit in."},
}

func drawTestimonials(c *canvas.Canvas, _ Env) error {
	for i, q := range testimonials {
		c.Text(canvas.Pt(q.x, q.y), q.text, boxed(centered(10), roundBox(white, accent(i), 0.9, 0.6, 2)))
	}

	c.SupTitle("The Individual Impact of Workplace Microaggressions", 0.98, titleSize)
	c.Text(canvas.Pt(0.5, 0.05),
		"Research participant testimonials describing psychological and professional consequences",
		canvas.TextStyle{Size: 12, HAlign: canvas.AlignCenter, Italic: true})
	return nil
}

// ============================================================
// Slide 7: workplace scene
// ============================================================

type bubble struct {
	x, y float64
	text string
	tint int // accent index
}

var workplaceRooms = []struct {
	x, y, w, h float64
	color      string
	label      string
}{
	{1, 4, 4, 3, "lightblue", "MEETING ROOM"},
	{9, 4, 4, 3, "lightgreen", "BREAK ROOM"},
	{4, 1, 6, 2, "lightyellow", "OPEN WORK AREA"},
}

// people are drawn as heads only
var workplacePeople = []canvas.Point{
	{X: 2, Y: 5}, {X: 2.5, Y: 6}, {X: 3.5, Y: 5.5}, {X: 4, Y: 6},
	{X: 10, Y: 5}, {X: 11, Y: 6}, {X: 12, Y: 5.5},
	{X: 5, Y: 1.5}, {X: 7, Y: 2}, {X: 8.5, Y: 1.5},
}

var workplaceRemarks = []bubble{
	{2.8, 5.2, "Wait, let me explain this\nagain in simpler terms...", 0},
	{3.7, 6.3, "That's a great idea!\nDidn't John just say that?", 1},
	{10.5, 5.3, "You're so well-spoken!\nWhere are you really from?", 2},
	{11.5, 6.4, "You don't look like\nan engineer!", 3},
	{5.5, 1.8, "I don't see disabilities.\nI treat everyone the same.", 4},
	{7.5, 2.3, "That's not what we meant.\nYou're being too sensitive.", 5},
}

// structural microaggressions, pinned to the wall as notices
var workplaceNotices = []bubble{
	{1, 0.5, "CULTURAL FIT:\nMust embrace our\nhappy-hour culture", 6},
	{7, 0.5, "PERFORMANCE REVIEW:\nMeasuring 'executive presence'\nand 'polish'", 7},
	{13, 0.5, "PROMOTION CRITERIA:\nMust be able to work\nunpredictable hours", 0},
}

func drawWorkplace(c *canvas.Canvas, _ Env) error {
	c.SetLimits(0, 14, 0, 8)

	c.Rect(0, 0, 14, 8, canvas.Style{Fill: palette.Alpha(palette.MustNamed("lightgray"), 0.3)})
	for _, r := range workplaceRooms {
		face, err := palette.Named(r.color)
		if err != nil {
			return err
		}
		c.Rect(r.x, r.y, r.w, r.h, filled(face, black, 0.3, 1))
		c.Text(canvas.Pt(r.x+r.w/2, r.y+r.h-0.2), r.label, canvas.TextStyle{Size: 10, HAlign: canvas.AlignCenter})
	}

	for _, p := range workplacePeople {
		c.Circle(p, 0.2, canvas.Style{Fill: white, Stroke: black, Width: 1})
	}

	for _, b := range workplaceRemarks {
		c.Text(canvas.Pt(b.x, b.y), b.text, boxed(centered(8), roundBox(white, accent(b.tint), 0.9, 0.3, 1.5)))
	}
	notice := palette.MustNamed("lightyellow")
	for _, b := range workplaceNotices {
		c.Text(canvas.Pt(b.x, b.y), b.text, boxed(centered(8), roundBox(notice, accent(b.tint), 0.9, 0.3, 1.5)))
	}

	c.SupTitle("Common Workplace Microaggressions", 0.98, titleSize)
	return nil
}

// ============================================================
// Slide 8: reflection journal
// ============================================================

var journalEntries = []struct {
	y          float64
	date, text string
}{
	{7.3, "February 3, 2025", "First class discussion on microaggressions - I realized I've experienced them but never\nhad language to describe what was happening. The concept of 'death by a thousand cuts' resonates."},
	{6.0, "February 17, 2025", "Uncomfortable realization today - I've definitely committed microinsults without intending to.\nI asked a colleague 'where are you really from?' last month without considering the implications."},
	{4.7, "March 2, 2025", "Case study analysis helped me see how intention doesn't equal impact. I need to focus less\non defending my intentions and more on understanding how my words affect others."},
	{3.4, "March 23, 2025", "Applied intervention strategies in group project when someone was repeatedly interrupted.\nUsed 'I'd like to hear X finish their point' technique. It worked well!"},
	{2.1, "April 12, 2025", "Connected microaggressions to broader systems of inequity today. Now I see how these\n'small' moments reinforce larger patterns of exclusion in workplaces."},
	{0.8, "April 28, 2025", "Final reflection: This topic has transformed how I view workplace interactions.\nI now have tools to recognize, respond to, and prevent microaggressions in my future career."},
}

func drawJournal(c *canvas.Canvas, _ Env) error {
	c.SetLimits(0, 12, 0, 8)

	c.Rect(0, 0, 12, 8, filled(palette.MustNamed("beige"), brown, 0.3, 2))
	ruling := outline(palette.Alpha(brown, 0.3), 1)
	for y := 0.5; y < 8; y += 0.5 {
		c.HLine(y, 0, 1, ruling)
	}

	const margin = 0.2
	for i, e := range journalEntries {
		c.Text(canvas.Pt(margin, e.y), e.date, canvas.TextStyle{Size: 10, Bold: true, Color: accent(i)})
		c.Text(canvas.Pt(margin, e.y-0.3), e.text, canvas.TextStyle{Size: 9})
	}

	c.SupTitle("Personal Reflection Journal: My Journey with Microaggressions", 0.98, titleSize)
	return nil
}
