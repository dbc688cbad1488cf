package render

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/figures"
)

var fixedNow = time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *database.DBService {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func lowRes(format canvas.Format) canvas.Options {
	return canvas.Options{Format: format, DPI: 12}
}

func TestRunWritesFilesInSlideOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store := newStore(t)
	r := New(store, zaptest.NewLogger(t))

	sum, err := r.Run(context.Background(), Request{
		Figures:   []string{"ripple", "iceberg", "timeline"},
		OutputDir: dir,
		Options:   lowRes(canvas.FormatPNG),
		Jobs:      2,
		Env:       figures.Env{Now: fixedNow},
	})
	require.NoError(t, err)
	require.Len(t, sum.Results, 3)

	wantFiles := []string{
		"iceberg_microaggressions.png",
		"microaggression_timeline.png",
		"microaggression_ripple_effects.png",
	}
	for i, res := range sum.Results {
		assert.Equal(t, wantFiles[i], res.File)
		require.NoError(t, res.Err)

		info, err := os.Stat(filepath.Join(dir, res.File))
		require.NoError(t, err)
		assert.Equal(t, res.Bytes, info.Size())
		assert.Positive(t, info.Size())
		assert.Len(t, res.SHA256, 64)
	}
	assert.Equal(t, 120, sum.Results[0].WidthPx)
	assert.Equal(t, 96, sum.Results[0].HeightPx)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}

	run, err := store.GetRun(sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, database.RunCompleted, run.Status)
	assert.NotNil(t, run.FinishedAt)

	arts, err := store.QueryArtifacts(sum.RunID)
	require.NoError(t, err)
	require.Len(t, arts, 3)
	assert.Equal(t, sum.Results[0].SHA256, arts[0].SHA256)
}

func TestRunWritesManifest(t *testing.T) {
	dir := t.TempDir()
	sum, err := New(nil, nil).Run(context.Background(), Request{
		Figures:   []string{"types"},
		OutputDir: dir,
		Options:   lowRes(canvas.FormatSVG),
		Env:       figures.Env{Now: fixedNow},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, sum.RunID, m.RunID)
	assert.Equal(t, "svg", m.Format)
	require.Len(t, m.Figures, 1)
	assert.Equal(t, "microaggression_types.svg", m.Figures[0].File)
	assert.Equal(t, 3, m.Figures[0].Slide)
}

func TestRunIsDeterministic(t *testing.T) {
	req := Request{
		Figures: []string{"concept-map", "development-plan"},
		Options: lowRes(canvas.FormatPNG),
		Env:     figures.Env{Now: fixedNow},
	}
	r := New(nil, nil)

	req.OutputDir = t.TempDir()
	first, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	req.OutputDir = t.TempDir()
	second, err := r.Run(context.Background(), req)
	require.NoError(t, err)

	for i := range first.Results {
		assert.Equal(t, first.Results[i].SHA256, second.Results[i].SHA256, first.Results[i].FigureID)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunRejectsBeforeWork(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	r := New(nil, nil)

	_, err := r.Run(context.Background(), Request{Figures: []string{"iceberg", "nope"}, OutputDir: dir, Options: lowRes(canvas.FormatPNG)})
	assert.ErrorIs(t, err, figures.ErrUnknownFigure)

	_, err = r.Run(context.Background(), Request{OutputDir: dir, Options: canvas.Options{Format: "gif", DPI: 10}})
	assert.ErrorIs(t, err, canvas.ErrInvalidOptions)

	_, err = r.Run(context.Background(), Request{OutputDir: dir, Options: canvas.Options{Format: canvas.FormatPNG, DPI: math.NaN()}})
	assert.ErrorIs(t, err, canvas.ErrInvalidOptions)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCanceled(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := New(store, nil).Run(ctx, Request{OutputDir: t.TempDir(), Options: lowRes(canvas.FormatPNG)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, len(figures.All()), sum.Failed)

	run, err := store.GetRun(sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, database.RunFailed, run.Status)
}

func TestRunUnwritableOutput(t *testing.T) {
	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := New(nil, nil).Run(context.Background(), Request{
		Figures:   []string{"iceberg"},
		OutputDir: filepath.Join(blocker, "out"),
		Options:   lowRes(canvas.FormatPNG),
	})
	assert.Error(t, err)
}

func TestWriteListing(t *testing.T) {
	sum := &Summary{Results: []Result{
		{Slide: 2, File: "iceberg_microaggressions.png"},
		{Slide: 3, File: "microaggression_types.png", Err: assert.AnError},
		{Slide: 4, File: "microaggression_timeline.png"},
	}}

	var buf bytes.Buffer
	require.NoError(t, sum.WriteListing(&buf))
	assert.Equal(t, "Created the following visual files:\n"+
		"Slide 2: iceberg_microaggressions.png\n"+
		"Slide 4: microaggression_timeline.png\n", buf.String())
}

func TestRunPartialFailure(t *testing.T) {
	dir := t.TempDir()
	// a directory where one image should go makes only that figure fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "microaggression_types.png"), 0755))
	store := newStore(t)

	sum, err := New(store, zaptest.NewLogger(t)).Run(context.Background(), Request{
		Figures:   []string{"iceberg", "types", "timeline"},
		OutputDir: dir,
		Options:   lowRes(canvas.FormatPNG),
		Jobs:      3,
		Env:       figures.Env{Now: fixedNow},
	})
	require.ErrorIs(t, err, ErrFiguresFailed)
	assert.Contains(t, err.Error(), "1 of 3")
	require.Len(t, sum.Results, 3)
	assert.Equal(t, 1, sum.Failed)
	assert.Error(t, sum.Results[1].Err)

	for _, name := range []string{"iceberg_microaggressions.png", "microaggression_timeline.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}

	run, err := store.GetRun(sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, database.RunFailed, run.Status)

	stats, err := store.GetRunStats(sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
}

func TestRunIgnoresHistoryFailures(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	dir := t.TempDir()
	sum, err := New(store, zaptest.NewLogger(t)).Run(context.Background(), Request{
		Figures:   []string{"iceberg"},
		OutputDir: dir,
		Options:   lowRes(canvas.FormatPNG),
		Env:       figures.Env{Now: fixedNow},
	})
	require.NoError(t, err)
	assert.Zero(t, sum.Failed)

	_, err = os.Stat(filepath.Join(dir, "iceberg_microaggressions.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ManifestName))
	assert.NoError(t, err)
}
