// Package analysis provides deterministic reports over the render history:
//
//   - Duration hotspots via Z-score analysis within a run
//   - Output changes against each figure's previous successful render
//   - File size trends via linear regression over a figure's history
//   - Run configuration drift against the preceding run
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/pkg/jsonutil"
	"github.com/Mr-Dark-debug/slidefigs/pkg/timeutil"
)

// Analyzer reads the render history through a store.
type Analyzer struct {
	store database.Store
	now   func() time.Time
}

// NewAnalyzer creates a new analysis engine backed by the given store.
func NewAnalyzer(store database.Store) *Analyzer {
	return &Analyzer{store: store, now: time.Now}
}

// ============================================================
// Duration Hotspot Detection
// ============================================================

// DurationHotspot identifies a figure that took abnormally long to render.
type DurationHotspot struct {
	FigureID   string  `json:"figure_id"`
	Slide      int     `json:"slide"`
	DurationMs int64   `json:"duration_ms"`
	ZScore     float64 `json:"z_score"`
	Severity   string  `json:"severity"` // "medium" or "high"
}

// DetectDurationHotspots scores each artifact's render time against the
// rest of the run. A Z-score above 2 is "medium", above 3 is "high".
func (a *Analyzer) DetectDurationHotspots(runID string) ([]DurationHotspot, error) {
	arts, err := a.store.QueryArtifacts(runID)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts for hotspot analysis: %w", err)
	}
	if len(arts) < 2 {
		return nil, nil
	}

	var sum, sumSq float64
	for _, art := range arts {
		d := float64(art.DurationMs)
		sum += d
		sumSq += d * d
	}
	n := float64(len(arts))
	mean := sum / n
	stddev := math.Sqrt(math.Max(0, sumSq/n-mean*mean))
	if stddev == 0 {
		return nil, nil
	}

	var hotspots []DurationHotspot
	for _, art := range arts {
		z := (float64(art.DurationMs) - mean) / stddev
		if z <= 2.0 {
			continue
		}
		severity := "medium"
		if z > 3.0 {
			severity = "high"
		}
		hotspots = append(hotspots, DurationHotspot{
			FigureID:   art.FigureID,
			Slide:      art.Slide,
			DurationMs: art.DurationMs,
			ZScore:     math.Round(z*100) / 100,
			Severity:   severity,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		return hotspots[i].ZScore > hotspots[j].ZScore
	})
	return hotspots, nil
}

// ============================================================
// Output Changes
// ============================================================

// Change kinds.
const (
	ChangeNew       = "new"
	ChangeChanged   = "changed"
	ChangeUnchanged = "unchanged"
)

// OutputChange compares one artifact with the figure's previous
// successful render.
type OutputChange struct {
	FigureID      string `json:"figure_id"`
	Slide         int    `json:"slide"`
	Kind          string `json:"kind"`
	SHA256        string `json:"sha256"`
	PreviousSHA   string `json:"previous_sha256,omitempty"`
	PreviousRunID string `json:"previous_run_id,omitempty"`
	BytesDelta    int64  `json:"bytes_delta"`
}

// DetectOutputChanges classifies every successful artifact of a run as
// new, changed or unchanged by content hash.
func (a *Analyzer) DetectOutputChanges(runID string) ([]OutputChange, error) {
	arts, err := a.store.QueryArtifacts(runID)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts for change analysis: %w", err)
	}

	var changes []OutputChange
	for _, art := range arts {
		if art.Status != database.ArtifactOK {
			continue
		}
		history, err := a.store.FigureHistoryUntil(art.FigureID, art.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("querying history of %s: %w", art.FigureID, err)
		}

		change := OutputChange{
			FigureID: art.FigureID,
			Slide:    art.Slide,
			Kind:     ChangeNew,
			SHA256:   art.SHA256,
		}
		if prev := previousSuccess(history, art); prev != nil {
			change.PreviousSHA = prev.SHA256
			change.PreviousRunID = prev.RunID
			change.BytesDelta = art.Bytes - prev.Bytes
			change.Kind = ChangeChanged
			if prev.SHA256 == art.SHA256 {
				change.Kind = ChangeUnchanged
			}
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// previousSuccess finds the newest successful artifact older than art in a
// newest-first history.
func previousSuccess(history []*database.Artifact, art *database.Artifact) *database.Artifact {
	seen := false
	for _, h := range history {
		if h.ArtifactID == art.ArtifactID {
			seen = true
			continue
		}
		if !seen && h.CreatedAt >= art.CreatedAt {
			continue
		}
		if h.Status == database.ArtifactOK {
			return h
		}
	}
	return nil
}

// ============================================================
// Size Trend Analysis
// ============================================================

// SizeTrend summarizes how a figure's output size moves across renders.
type SizeTrend struct {
	FigureID  string  `json:"figure_id"`
	Samples   int     `json:"samples"`
	Slope     float64 `json:"slope"` // Bytes per render
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	Growing   bool    `json:"growing"`
}

// dataPoint represents a single observation for regression analysis.
type dataPoint struct {
	x float64
	y float64
}

// AnalyzeSizeTrend regresses file size over the figure's successful
// renders up to until (Unix nanoseconds), oldest first.
func (a *Analyzer) AnalyzeSizeTrend(figureID string, until int64) (*SizeTrend, error) {
	history, err := a.store.FigureHistoryUntil(figureID, until)
	if err != nil {
		return nil, fmt.Errorf("querying history for size trend: %w", err)
	}

	var points []dataPoint
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Status != database.ArtifactOK {
			continue
		}
		points = append(points, dataPoint{x: float64(len(points)), y: float64(history[i].Bytes)})
	}

	trend := &SizeTrend{FigureID: figureID, Samples: len(points)}
	if len(points) < 2 {
		return trend, nil
	}

	slope, intercept, rSquared := linearRegression(points)
	trend.Slope = math.Round(slope*100) / 100
	trend.Intercept = math.Round(intercept*100) / 100
	trend.RSquared = math.Round(rSquared*1000) / 1000
	trend.Growing = slope > 0 && rSquared > 0.7
	return trend, nil
}

// linearRegression computes ordinary least squares regression.
// Returns slope (m), intercept (b), and R-squared goodness of fit.
func linearRegression(points []dataPoint) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.x
		sumY += p.y
		sumXY += p.x * p.y
		sumX2 += p.x * p.x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		predicted := slope*p.x + intercept
		ssRes += (p.y - predicted) * (p.y - predicted)
		ssTot += (p.y - meanY) * (p.y - meanY)
	}

	if ssTot == 0 {
		rSquared = 1.0
	} else {
		rSquared = 1 - ssRes/ssTot
	}
	return slope, intercept, rSquared
}

// ============================================================
// Configuration Drift
// ============================================================

// ConfigDrift lists the run settings that differ from the preceding run.
type ConfigDrift struct {
	PreviousRunID string              `json:"previous_run_id"`
	Changes       []jsonutil.JSONDiff `json:"changes"`
}

// DetectConfigDrift diffs a run's settings against the run started just
// before it. It returns nil when there is no earlier run.
func (a *Analyzer) DetectConfigDrift(run *database.Run) (*ConfigDrift, error) {
	until := run.StartedAt - 1
	prev, err := a.store.QueryRuns(database.RunFilter{Until: &until, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("querying previous run: %w", err)
	}
	if len(prev) == 0 {
		return nil, nil
	}

	changes, err := jsonutil.ComputeJSONDiff(
		jsonutil.MustMarshal(runSettings(prev[0])),
		jsonutil.MustMarshal(runSettings(run)),
	)
	if err != nil {
		return nil, fmt.Errorf("diffing run settings: %w", err)
	}
	return &ConfigDrift{PreviousRunID: prev[0].RunID, Changes: changes}, nil
}

func runSettings(r *database.Run) map[string]interface{} {
	settings := map[string]interface{}{
		"output_dir": r.OutputDir,
		"format":     r.Format,
		"dpi":        r.DPI,
	}
	for k, v := range r.Metadata {
		settings[k] = v
	}
	return settings
}

// ============================================================
// Full Analysis Report
// ============================================================

// AnalysisReport is the complete output of `slidefigs report`.
type AnalysisReport struct {
	RunID       string             `json:"run_id"`
	GeneratedAt string             `json:"generated_at"`
	Run         *database.Run      `json:"run"`
	Stats       *database.RunStats `json:"stats"`
	Hotspots    []DurationHotspot  `json:"hotspots"`
	Changes     []OutputChange     `json:"changes"`
	SizeTrends  []*SizeTrend       `json:"size_trends"`
	Drift       *ConfigDrift       `json:"config_drift,omitempty"`
	Warnings    []string           `json:"warnings"`
}

// FullAnalysis runs all analysis passes over one run. An empty runID
// selects the most recent run.
func (a *Analyzer) FullAnalysis(runID string) (*AnalysisReport, error) {
	run, err := a.resolveRun(runID)
	if err != nil {
		return nil, err
	}

	report := &AnalysisReport{
		RunID:       run.RunID,
		GeneratedAt: a.now().Format(time.RFC3339),
		Run:         run,
	}

	stats, err := a.store.GetRunStats(run.RunID)
	if err != nil {
		return nil, fmt.Errorf("gathering run stats: %w", err)
	}
	report.Stats = stats

	hotspots, err := a.DetectDurationHotspots(run.RunID)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Hotspot analysis failed: %v", err))
	}
	report.Hotspots = hotspots

	changes, err := a.DetectOutputChanges(run.RunID)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Change analysis failed: %v", err))
	}
	report.Changes = changes

	end, err := a.runEnd(run)
	if err != nil {
		return nil, err
	}
	for _, c := range changes {
		trend, err := a.AnalyzeSizeTrend(c.FigureID, end)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Size trend for %s failed: %v", c.FigureID, err))
			continue
		}
		report.SizeTrends = append(report.SizeTrends, trend)
		if trend.Growing {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s output grows by %.0f bytes per render (R²=%.3f)", c.FigureID, trend.Slope, trend.RSquared))
		}
	}

	drift, err := a.DetectConfigDrift(run)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Config drift analysis failed: %v", err))
	}
	report.Drift = drift

	if stats.Failed > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d figure(s) failed to render", stats.Failed))
	}
	for _, h := range hotspots {
		if h.Severity == "high" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s took %s (Z-score: %.2f)", h.FigureID, timeutil.FormatDuration(h.DurationMs), h.ZScore))
		}
	}

	return report, nil
}

// runEnd is the time of the run's last write: its finish time, or its
// newest artifact while it has none.
func (a *Analyzer) runEnd(run *database.Run) (int64, error) {
	end := run.StartedAt
	if run.FinishedAt != nil {
		end = *run.FinishedAt
	}
	arts, err := a.store.QueryArtifacts(run.RunID)
	if err != nil {
		return 0, fmt.Errorf("querying artifacts of %s: %w", run.RunID, err)
	}
	for _, art := range arts {
		if art.CreatedAt > end {
			end = art.CreatedAt
		}
	}
	return end, nil
}

func (a *Analyzer) resolveRun(runID string) (*database.Run, error) {
	if runID != "" {
		run, err := a.store.GetRun(runID)
		if err != nil {
			return nil, fmt.Errorf("loading run: %w", err)
		}
		return run, nil
	}
	runs, err := a.store.QueryRuns(database.RunFilter{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("loading latest run: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no recorded runs: %w", database.ErrNotFound)
	}
	return runs[0], nil
}

// FormatReport generates a human-readable markdown report.
func (a *Analyzer) FormatReport(report *AnalysisReport) string {
	var b strings.Builder

	b.WriteString("# slidefigs Render Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** `%s`\n", report.RunID)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt)

	if report.Run != nil && report.Stats != nil {
		r, s := report.Run, report.Stats
		b.WriteString("## Run Summary\n\n")
		b.WriteString("| Metric | Value |\n")
		b.WriteString("|--------|-------|\n")
		fmt.Fprintf(&b, "| Status | %s |\n", r.Status)
		fmt.Fprintf(&b, "| Started | %s |\n", timeutil.FormatTimestampFull(r.StartedAt))
		fmt.Fprintf(&b, "| Output | %s (%s, %g dpi) |\n", r.OutputDir, r.Format, r.DPI)
		fmt.Fprintf(&b, "| Figures | %d (%d ok, %d failed) |\n", s.Figures, s.Succeeded, s.Failed)
		fmt.Fprintf(&b, "| Total Size | %s |\n", humanize.Bytes(uint64(s.TotalBytes)))
		fmt.Fprintf(&b, "| Render Time | %s |\n", timeutil.FormatDuration(s.TotalDurationMs))
		if s.SlowestFigure != "" {
			fmt.Fprintf(&b, "| Slowest | %s (%s) |\n", s.SlowestFigure, timeutil.FormatDuration(s.SlowestMs))
		}
		b.WriteString("\n")
	}

	if len(report.Hotspots) > 0 {
		b.WriteString("## Duration Hotspots\n\n")
		b.WriteString("| Figure | Duration | Z-Score | Severity |\n")
		b.WriteString("|--------|----------|---------|----------|\n")
		for _, h := range report.Hotspots {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %s |\n",
				h.FigureID, timeutil.FormatDuration(h.DurationMs), h.ZScore, h.Severity)
		}
		b.WriteString("\n")
	}

	if len(report.Changes) > 0 {
		b.WriteString("## Output Changes\n\n")
		b.WriteString("| Slide | Figure | Change | Size Delta |\n")
		b.WriteString("|-------|--------|--------|------------|\n")
		for _, c := range report.Changes {
			fmt.Fprintf(&b, "| %d | %s | %s | %+d B |\n", c.Slide, c.FigureID, c.Kind, c.BytesDelta)
		}
		b.WriteString("\n")
	}

	if len(report.SizeTrends) > 0 {
		b.WriteString("## Size Trends\n\n")
		for _, t := range report.SizeTrends {
			if t.Samples < 2 {
				continue
			}
			fmt.Fprintf(&b, "- **%s:** %+.0f B/render over %d renders (R² %.3f)\n",
				t.FigureID, t.Slope, t.Samples, t.RSquared)
		}
		b.WriteString("\n")
	}

	if report.Drift != nil && len(report.Drift.Changes) > 0 {
		fmt.Fprintf(&b, "## Settings Changed Since `%s`\n\n", report.Drift.PreviousRunID)
		for _, d := range report.Drift.Changes {
			fmt.Fprintf(&b, "- `%s` %s: %s → %s\n", d.Path, d.Type,
				jsonutil.TruncateString(d.OldValue, 40), jsonutil.TruncateString(d.NewValue, 40))
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
