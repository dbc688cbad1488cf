package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader produces the top bar:
//
//	SLIDEFIGS  │  Slide 9  │  concept_map.png  │  out/
func renderHeader(m *Model) string {
	sep := headerSepStyle.Render(" │ ")
	parts := []string{headerBrandStyle.Render("SLIDEFIGS")}

	if f, ok := m.current(); ok {
		parts = append(parts,
			sep, headerMetaStyle.Render(fmt.Sprintf("Slide %d", f.Slide)),
			sep, headerMetaStyle.Render(f.File(m.template.Options.Format)),
		)
	} else {
		parts = append(parts, sep, headerMetaStyle.Render("Figure Browser"))
	}
	if m.template.OutputDir != "" {
		parts = append(parts, sep, headerMetaStyle.Render(m.template.OutputDir))
	}

	return headerBarStyle.Width(m.width).Render(strings.Join(parts, ""))
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left, right string

	switch {
	case m.filterMode:
		cursor := filterCursorStyle.Render(" ")
		left = filterBarStyle.Render(fmt.Sprintf("/ %s%s", m.filter, cursor))
		right = renderHints([]hint{
			{"enter", "apply"},
			{"esc", "clear"},
		})
	default:
		status := m.statusMsg
		if m.rendering {
			status = m.spinner.View() + " " + status
		}
		if status != "" {
			left = statusStyle.Render(status)
		}
		right = renderHints([]hint{
			{"↑↓", "navigate"},
			{"r", "render"},
			{"R", "all"},
			{"tab", "pane"},
			{"/", "filter"},
			{"q", "quit"},
		})
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	line := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(line)
}

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
