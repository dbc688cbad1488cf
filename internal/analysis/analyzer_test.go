package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/slidefigs/internal/database"
)

func TestLinearRegression(t *testing.T) {
	// Perfect linear: y = 2x + 1
	points := []dataPoint{{0, 1}, {1, 3}, {2, 5}, {3, 7}, {4, 9}}

	slope, intercept, rSquared := linearRegression(points)
	assert.InDelta(t, 2.0, slope, 0.001)
	assert.InDelta(t, 1.0, intercept, 0.001)
	assert.InDelta(t, 1.0, rSquared, 0.001)
}

func TestLinearRegressionNoisy(t *testing.T) {
	points := []dataPoint{{0, 1.1}, {1, 2.9}, {2, 5.2}, {3, 6.8}, {4, 9.1}}

	slope, _, rSquared := linearRegression(points)
	assert.InDelta(t, 2.0, slope, 0.5)
	assert.Greater(t, rSquared, 0.95)
}

func TestLinearRegressionConstant(t *testing.T) {
	points := []dataPoint{{0, 5}, {1, 5}, {2, 5}, {3, 5}}

	slope, intercept, rSquared := linearRegression(points)
	assert.InDelta(t, 0, slope, 0.001)
	assert.InDelta(t, 5.0, intercept, 0.001)
	assert.InDelta(t, 1.0, rSquared, 0.01)
}

func TestLinearRegressionSinglePoint(t *testing.T) {
	slope, _, _ := linearRegression([]dataPoint{{0, 5}})
	assert.Zero(t, slope)
}

type fixture struct {
	t     *testing.T
	store *database.DBService
	clock int64
}

func newFixture(t *testing.T) *fixture {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &fixture{t: t, store: store, clock: time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC).UnixNano()}
}

func (f *fixture) tick() int64 {
	f.clock += int64(time.Second)
	return f.clock
}

func (f *fixture) run(id string, dpi float64) *database.Run {
	r := &database.Run{
		RunID:     id,
		StartedAt: f.tick(),
		Status:    database.RunCompleted,
		OutputDir: "out",
		Format:    "png",
		DPI:       dpi,
		Metadata:  map[string]string{"jobs": "2"},
	}
	require.NoError(f.t, f.store.InsertRun(r))
	return r
}

func (f *fixture) artifact(runID, figureID string, slide int, sha string, bytes, ms int64) {
	require.NoError(f.t, f.store.InsertArtifact(&database.Artifact{
		ArtifactID: runID + "/" + figureID,
		RunID:      runID,
		FigureID:   figureID,
		Slide:      slide,
		Filename:   figureID + ".png",
		Path:       "out/" + figureID + ".png",
		Bytes:      bytes,
		SHA256:     sha,
		DurationMs: ms,
		Status:     database.ArtifactOK,
		CreatedAt:  f.tick(),
	}))
}

func TestDetectDurationHotspots(t *testing.T) {
	f := newFixture(t)
	f.run("r1", 300)
	for i := 1; i <= 12; i++ {
		f.artifact("r1", fmt.Sprintf("fig-%02d", i), i, "x", 100, 10)
	}
	f.artifact("r1", "concept-map", 13, "x", 100, 500)

	hotspots, err := NewAnalyzer(f.store).DetectDurationHotspots("r1")
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.Equal(t, "concept-map", hotspots[0].FigureID)
	assert.Equal(t, "high", hotspots[0].Severity)
	assert.Greater(t, hotspots[0].ZScore, 3.0)
}

func TestDetectDurationHotspotsUniform(t *testing.T) {
	f := newFixture(t)
	f.run("r1", 300)
	f.artifact("r1", "iceberg", 1, "x", 100, 10)
	f.artifact("r1", "types", 2, "x", 100, 10)

	hotspots, err := NewAnalyzer(f.store).DetectDurationHotspots("r1")
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}

func TestDetectOutputChanges(t *testing.T) {
	f := newFixture(t)
	f.run("r1", 300)
	f.artifact("r1", "iceberg", 1, "aaa", 100, 10)
	f.artifact("r1", "types", 2, "bbb", 100, 10)

	f.run("r2", 300)
	f.artifact("r2", "iceberg", 1, "aaa", 100, 10)
	f.artifact("r2", "types", 2, "ccc", 140, 10)
	f.artifact("r2", "timeline", 3, "ddd", 100, 10)

	changes, err := NewAnalyzer(f.store).DetectOutputChanges("r2")
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, ChangeUnchanged, changes[0].Kind)
	assert.Equal(t, "r1", changes[0].PreviousRunID)
	assert.Equal(t, ChangeChanged, changes[1].Kind)
	assert.Equal(t, int64(40), changes[1].BytesDelta)
	assert.Equal(t, ChangeNew, changes[2].Kind)
}

func TestAnalyzeSizeTrend(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("r%d", i)
		f.run(id, 300)
		f.artifact(id, "iceberg", 1, id, int64(1000+100*i), 10)
	}

	trend, err := NewAnalyzer(f.store).AnalyzeSizeTrend("iceberg", f.clock)
	require.NoError(t, err)
	assert.Equal(t, 4, trend.Samples)
	assert.InDelta(t, 100, trend.Slope, 0.01)
	assert.True(t, trend.Growing)
}

func TestFullAnalysisOfOlderRun(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("r%02d", i)
		f.run(id, 300)
		f.artifact(id, "iceberg", 1, id, int64(1000+100*i), 10)
	}
	f.run("r60", 300)
	f.artifact("r60", "iceberg", 1, "r59", 9000, 10)

	report, err := NewAnalyzer(f.store).FullAnalysis("r59")
	require.NoError(t, err)

	require.Len(t, report.Changes, 1)
	assert.Equal(t, ChangeChanged, report.Changes[0].Kind)
	assert.Equal(t, "r58", report.Changes[0].PreviousRunID)

	// every earlier render counts and r60 does not
	require.Len(t, report.SizeTrends, 1)
	assert.Equal(t, 60, report.SizeTrends[0].Samples)
	assert.InDelta(t, 100, report.SizeTrends[0].Slope, 0.01)
}

func TestDetectOutputChangesIgnoresLaterRuns(t *testing.T) {
	f := newFixture(t)
	f.run("r1", 300)
	f.artifact("r1", "iceberg", 1, "aaa", 100, 10)
	f.run("r2", 300)
	f.artifact("r2", "iceberg", 1, "aaa", 100, 10)

	changes, err := NewAnalyzer(f.store).DetectOutputChanges("r1")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeNew, changes[0].Kind)
}

func TestFullAnalysisLatestRun(t *testing.T) {
	f := newFixture(t)
	f.run("r1", 300)
	f.artifact("r1", "iceberg", 1, "aaa", 100, 10)
	f.run("r2", 150)
	f.artifact("r2", "iceberg", 1, "bbb", 120, 12)

	a := NewAnalyzer(f.store)
	report, err := a.FullAnalysis("")
	require.NoError(t, err)
	assert.Equal(t, "r2", report.RunID)
	assert.Equal(t, 1, report.Stats.Figures)
	require.NotNil(t, report.Drift)
	assert.Equal(t, "r1", report.Drift.PreviousRunID)
	require.Len(t, report.Drift.Changes, 1)
	assert.Equal(t, "dpi", report.Drift.Changes[0].Path)

	md := a.FormatReport(report)
	assert.Contains(t, md, "# slidefigs Render Report")
	assert.Contains(t, md, "`r2`")
	assert.Contains(t, md, "| 1 | iceberg | changed | +20 B |")
	assert.Contains(t, md, "`dpi` update")
}

func TestFullAnalysisWithoutRuns(t *testing.T) {
	f := newFixture(t)
	_, err := NewAnalyzer(f.store).FullAnalysis("")
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = NewAnalyzer(f.store).FullAnalysis("nope")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
