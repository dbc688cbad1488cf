package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Mr-Dark-debug/slidefigs/pkg/timeutil"
)

// renderDetail renders the selected figure and its latest artifact.
func renderDetail(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneDetail {
		titleStyle = panelTitleStyle
	}
	title := titleStyle.Render("Detail")

	f, ok := m.current()
	if !ok {
		return title + "\n\n" + emptyStateStyle.Render("Select a figure to view details.")
	}

	lines := []string{title, ""}

	// ── Figure ──

	lines = append(lines, detailRow("Slide", fmt.Sprintf("%d", f.Slide)))
	lines = append(lines, detailRow("Title", truncate(f.Title, width-12)))
	lines = append(lines, detailRow("File", f.File(m.template.Options.Format)))
	w, h := f.PixelSize(m.template.Options.DPI)
	lines = append(lines, detailRow("Size", fmt.Sprintf("%g×%g in  %d×%d px", f.Width, f.Height, w, h)))

	// ── Latest render ──

	lines = append(lines, "")
	lines = append(lines, detailSectionStyle.Render("Latest Render"))

	a := m.latest[f.ID]
	if a == nil {
		lines = append(lines, dimStyle.Render("Never rendered. Press r to render."))
	} else {
		lines = append(lines, detailRow("Status", statusDot(a)+" "+a.Status))
		lines = append(lines, detailRow("Path", truncate(a.Path, width-12)))
		lines = append(lines, detailRow("Bytes", humanize.Bytes(uint64(a.Bytes))))
		lines = append(lines, detailRow("SHA256", shortID(a.SHA256, 16)))
		lines = append(lines, detailRow("Took", timeutil.FormatDuration(a.DurationMs)))
		lines = append(lines, detailRow("When", timeutil.RelativeTime(a.CreatedAt, m.now())))
		lines = append(lines, detailRow("Run", shortID(a.RunID, 8)))
		if a.ErrorMessage != nil {
			lines = append(lines, "")
			lines = append(lines, errorTextStyle.Render(truncate(*a.ErrorMessage, (width-4)*2)))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderDetailPanel wraps detail in a styled panel.
func renderDetailPanel(m *Model, width, height int) string {
	content := renderDetail(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneDetail {
		style = panelActiveStyle
	}
	return style.Width(width).Height(height).Render(content)
}

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + detailValueStyle.Render(value)
}
