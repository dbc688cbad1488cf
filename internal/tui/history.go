package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/pkg/timeutil"
)

// renderHistory lists the selected figure's past renders, newest first.
// Each entry is marked against the render before it:
//
//	~ output changed   = same bytes as before   ! failed
func renderHistory(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneHistory {
		titleStyle = panelTitleStyle
	}
	title := titleStyle.Render("History")

	if len(m.history) == 0 {
		return title + "\n" + historySameStyle.Render("No renders recorded for this figure.")
	}
	title += dimStyle.Render(fmt.Sprintf("  %d renders", len(m.history)))

	var lines []string
	for i, a := range m.history {
		var prev *database.Artifact
		if i+1 < len(m.history) {
			prev = m.history[i+1]
		}

		ts := historyTimeStyle.Render(timeutil.FormatTimestampFull(a.CreatedAt))
		info := fmt.Sprintf("%s  %s  %s", shortID(a.SHA256, 8),
			humanize.Bytes(uint64(a.Bytes)), timeutil.FormatDuration(a.DurationMs))

		switch {
		case a.Status != database.ArtifactOK:
			msg := "failed"
			if a.ErrorMessage != nil {
				msg = truncate(*a.ErrorMessage, maxInt(width-30, 10))
			}
			lines = append(lines, ts+" "+historyFailStyle.Render("! "+msg))
		case prev == nil || prev.SHA256 != a.SHA256:
			lines = append(lines, ts+" "+historyChangedStyle.Render("~ "+info))
		default:
			lines = append(lines, ts+" "+historySameStyle.Render("= "+info))
		}
	}

	// Apply scroll offset
	contentHeight := height - 1
	if m.historyScroll > 0 && m.historyScroll < len(lines) {
		lines = lines[m.historyScroll:]
	}
	if len(lines) > contentHeight {
		lines = lines[:maxInt(contentHeight, 0)]
	}

	return title + "\n" + strings.Join(lines, "\n")
}

// renderHistoryPanel wraps the history in a styled panel.
func renderHistoryPanel(m *Model, width, height int) string {
	content := renderHistory(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneHistory {
		style = panelActiveStyle
	}
	return style.Width(width).Height(height).Render(content)
}
