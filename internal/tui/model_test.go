package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/render"
)

type fakeRunner struct {
	requests []render.Request
}

func (f *fakeRunner) Run(ctx context.Context, req render.Request) (*render.Summary, error) {
	f.requests = append(f.requests, req)
	now := time.Now()
	return &render.Summary{
		StartedAt:  now,
		FinishedAt: now,
		Results:    []render.Result{{FigureID: "iceberg", Slide: 2, File: "iceberg_microaggressions.png"}},
	}, nil
}

func newTestModel(t *testing.T) (Model, *database.DBService, *fakeRunner) {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runner := &fakeRunner{}
	m := NewModel(store, runner, render.Request{
		OutputDir: "out",
		Options:   canvas.Options{Format: canvas.FormatPNG, DPI: 300},
	})
	return m, store, runner
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func TestNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)

	f, ok := m.current()
	require.True(t, ok)
	assert.Equal(t, "iceberg", f.ID)

	m, _ = press(m, "j", "down", "k")
	f, _ = m.current()
	assert.Equal(t, "types", f.ID)

	m, _ = press(m, "k", "k")
	assert.Equal(t, 0, m.selected)
}

func TestPaneCycling(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(m, "tab")
	assert.Equal(t, PaneDetail, m.activePane)
	m, _ = press(m, "tab", "tab")
	assert.Equal(t, PaneList, m.activePane)
	m, _ = press(m, "tab", "esc")
	assert.Equal(t, PaneList, m.activePane)
}

func TestFilterByTitle(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(m, "/", "r", "o", "a", "d")
	assert.True(t, m.filterMode)
	require.Len(t, m.visible(), 1)

	m, _ = press(m, "enter")
	assert.False(t, m.filterMode)
	f, ok := m.current()
	require.True(t, ok)
	assert.Equal(t, "roadmap", f.ID)

	m, _ = press(m, "esc")
	assert.Len(t, m.visible(), 13)
}

func TestRenderSelected(t *testing.T) {
	m, _, runner := newTestModel(t)

	m, cmd := press(m, "r")
	assert.True(t, m.rendering)
	require.NotNil(t, cmd)

	// pressing again while busy is ignored
	_, again := press(m, "R")
	assert.Nil(t, again)

	msg := m.renderFigures([]string{"iceberg"})()
	require.Len(t, runner.requests, 1)
	assert.Equal(t, []string{"iceberg"}, runner.requests[0].Figures)
	assert.Equal(t, "out", runner.requests[0].OutputDir)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.rendering)
	assert.Contains(t, m.statusMsg, "Rendered iceberg_microaggressions.png")
}

func TestLatestLoadedDrivesStatusDots(t *testing.T) {
	m, store, _ := newTestModel(t)
	require.NoError(t, store.InsertRun(&database.Run{
		RunID: "r1", StartedAt: 1, Status: database.RunCompleted,
		OutputDir: "out", Format: "png", DPI: 300,
	}))
	require.NoError(t, store.InsertArtifact(&database.Artifact{
		ArtifactID: "a1", RunID: "r1", FigureID: "iceberg", Slide: 2,
		Filename: "iceberg_microaggressions.png", Path: "out/iceberg_microaggressions.png",
		Bytes: 2048, SHA256: "deadbeefcafe", Status: database.ArtifactOK, CreatedAt: 1,
	}))

	next, _ := m.Update(m.loadLatest()())
	m = next.(Model)
	require.Contains(t, m.latest, "iceberg")
	assert.Equal(t, "13 figures  1 rendered", m.statusMsg)

	next, _ = m.Update(m.loadHistory()())
	m = next.(Model)
	require.Len(t, m.history, 1)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	view := m.View()
	assert.Contains(t, view, "SLIDEFIGS")
	assert.Contains(t, view, "2.0 kB")
	assert.True(t, strings.Contains(view, "deadbeef"))
}

func TestThemeStyles(t *testing.T) {
	assert.Equal(t, colorBgSurface, headerBarStyle.GetBackground())
	assert.Equal(t, colorText, statusStyle.GetForeground())
	assert.Equal(t, colorHighlight, itemSelectedStyle.GetBackground())
	assert.Equal(t, colorRed, statusFailStyle.GetForeground())
	assert.Equal(t, slideStyle(1), slideStyle(1+len(slideSwatches)))
}
