package tui

import (
	"strings"

	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/figures"
	"github.com/Mr-Dark-debug/slidefigs/pkg/jsonutil"
)

// ────────────────────────────────────────────────────────────
// Figure helpers
// ────────────────────────────────────────────────────────────

// filterFigures keeps the figures whose title or ID contains query,
// case-insensitively.
func filterFigures(all []figures.Figure, query string) []figures.Figure {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	var out []figures.Figure
	for _, f := range all {
		if strings.Contains(strings.ToLower(f.Title), q) || strings.Contains(f.ID, q) {
			out = append(out, f)
		}
	}
	return out
}

// statusDot renders the outcome of a figure's latest artifact.
func statusDot(a *database.Artifact) string {
	switch {
	case a == nil:
		return statusPendingStyle.Render("○")
	case a.Status == database.ArtifactOK:
		return statusOkStyle.Render("●")
	default:
		return statusFailStyle.Render("●")
	}
}

// ────────────────────────────────────────────────────────────
// String helpers
// ────────────────────────────────────────────────────────────

// truncate cuts a string to maxLen runes and appends "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return jsonutil.TruncateString(s, maxLen)
}

// shortID returns first n characters of an ID string.
func shortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// clamp restricts val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
