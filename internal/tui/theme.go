package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/slidefigs/internal/palette"
)

// ────────────────────────────────────────────────────────────
// Color Palette
// ────────────────────────────────────────────────────────────
//
// Every terminal color the browser uses is defined here. Slide numbers
// borrow the figures' own accent palette below.

var (
	// Base
	colorBg        = lipgloss.Color("#0d1117")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// bar is the full-width strip used by the header, status line and filter.
func bar() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorText).Background(colorBgSurface).Padding(0, 1)
}

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.Border{Top: "─"}).
		BorderForeground(border)
}

var (
	headerBarStyle   = bar()
	headerBrandStyle = fg(colorBlue).Bold(true)
	headerSepStyle   = fg(colorTextMuted)
	headerMetaStyle  = fg(colorTextDim)

	panelStyle         = panel(colorDivider)
	panelActiveStyle   = panel(colorBlue)
	panelTitleStyle    = fg(colorBlue).Bold(true)
	panelTitleDimStyle = fg(colorTextMuted).Bold(true)

	itemStyle         = fg(colorText).Padding(0, 1)
	itemSelectedStyle = fg(colorText).Background(colorHighlight).Bold(true).Padding(0, 1)
	dimStyle          = fg(colorTextDim)
	emptyStateStyle   = fg(colorTextMuted).Padding(2, 4)

	statusOkStyle      = fg(colorGreen)
	statusFailStyle    = fg(colorRed)
	statusPendingStyle = fg(colorYellow)

	detailLabelStyle   = fg(colorBlue).Width(10)
	detailValueStyle   = fg(colorText)
	detailSectionStyle = fg(colorDivider)
	errorTextStyle     = fg(colorRed)

	historyChangedStyle = fg(colorYellow)
	historySameStyle    = fg(colorTextMuted)
	historyFailStyle    = fg(colorRed)
	historyTimeStyle    = fg(colorTextMuted)

	statusStyle   = bar()
	spinnerStyle  = fg(colorBlue)
	hintKeyStyle  = fg(colorText).Bold(true)
	hintDescStyle = fg(colorTextMuted)

	filterBarStyle    = bar()
	filterCursorStyle = lipgloss.NewStyle().Background(colorBlue).Foreground(colorBg)
)

// ────────────────────────────────────────────────────────────
// Slide Swatches
// ────────────────────────────────────────────────────────────

// Slide numbers are tinted with the qualitative palette the figures use.
var slideSwatches = func() []lipgloss.Style {
	out := make([]lipgloss.Style, len(palette.Accents))
	for i, c := range palette.Accents {
		out[i] = fg(lipgloss.Color(palette.Hex(c))).Bold(true)
	}
	return out
}()

func slideStyle(slide int) lipgloss.Style {
	return slideSwatches[slide%len(slideSwatches)]
}
