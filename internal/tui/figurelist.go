package tui

import (
	"fmt"
	"strings"
)

// renderList renders the figure selector.
func renderList(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneList {
		titleStyle = panelTitleStyle
	}

	vis := m.visible()
	title := titleStyle.Render("Figures") +
		dimStyle.Render(fmt.Sprintf("  %d/%d", len(vis), len(m.figures)))
	if m.filter != "" {
		title += dimStyle.Render(fmt.Sprintf("  filter %q", m.filter))
	}

	if len(vis) == 0 {
		return title + "\n\n" + emptyStateStyle.Render("No figure title matches the filter.")
	}

	lines := []string{title, ""}

	// Visible range for scrolling
	maxVisible := maxInt(height-2, 1)
	start := 0
	if m.selected >= maxVisible {
		start = m.selected - maxVisible + 1
	}
	end := minInt(start+maxVisible, len(vis))

	for i := start; i < end; i++ {
		f := vis[i]
		dot := statusDot(m.latest[f.ID])
		slide := slideStyle(f.Slide).Render(fmt.Sprintf("%2d", f.Slide))
		name := truncate(f.Title, maxInt(width-10, 10))
		content := fmt.Sprintf("%s %s  %s", dot, slide, name)

		if i == m.selected {
			lines = append(lines, itemSelectedStyle.Width(width).Render(content))
		} else {
			lines = append(lines, itemStyle.Width(width).Render(content))
		}
	}

	return strings.Join(lines, "\n")
}

// renderListPanel wraps the list in a styled panel.
func renderListPanel(m *Model, width, height int) string {
	content := renderList(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneList {
		style = panelActiveStyle
	}
	return style.Width(width).Height(height).Render(content)
}
