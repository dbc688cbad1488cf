package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DBService {
	t.Helper()
	svc, err := NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func seedRun(t *testing.T, svc *DBService, id string, started int64) *Run {
	t.Helper()
	run := &Run{
		RunID:     id,
		StartedAt: started,
		Status:    RunRunning,
		OutputDir: "out",
		Format:    "png",
		DPI:       300,
		Metadata:  map[string]string{"jobs": "4"},
	}
	if err := svc.InsertRun(run); err != nil {
		t.Fatalf("InsertRun(%s) failed: %v", id, err)
	}
	return run
}

func artifact(runID, figureID string, slide int, created int64) *Artifact {
	return &Artifact{
		ArtifactID: fmt.Sprintf("%s/%s", runID, figureID),
		RunID:      runID,
		FigureID:   figureID,
		Slide:      slide,
		Filename:   figureID + ".png",
		Path:       "out/" + figureID + ".png",
		Bytes:      1024,
		SHA256:     "abc",
		WidthPx:    3000,
		HeightPx:   1800,
		DurationMs: 10,
		Status:     ArtifactOK,
		CreatedAt:  created,
	}
}

// TestNewDBService verifies that the database initializes correctly
// with the embedded schema using an in-memory SQLite instance.
func TestNewDBService(t *testing.T) {
	svc := newTestDB(t)
	if svc.Path() != ":memory:" {
		t.Errorf("Path = %q, want :memory:", svc.Path())
	}
}

// TestRunLifecycle covers insert, upsert on finish, and lookup.
func TestRunLifecycle(t *testing.T) {
	svc := newTestDB(t)
	now := time.Now().UnixNano()
	run := seedRun(t, svc, "run-001", now)

	got, err := svc.GetRun("run-001")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunRunning || got.FinishedAt != nil {
		t.Errorf("fresh run = %+v, want running and unfinished", got)
	}
	if got.Metadata["jobs"] != "4" {
		t.Errorf("Metadata = %v, want jobs=4", got.Metadata)
	}

	finished := now + int64(time.Second)
	run.FinishedAt = &finished
	run.Status = RunCompleted
	run.Metadata = nil
	if err := svc.InsertRun(run); err != nil {
		t.Fatalf("InsertRun (update) failed: %v", err)
	}

	got, err = svc.GetRun("run-001")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.FinishedAt == nil || *got.FinishedAt != finished {
		t.Errorf("FinishedAt = %v, want %d", got.FinishedAt, finished)
	}
	if got.Metadata["jobs"] != "4" {
		t.Errorf("nil metadata on update must keep the stored value, got %v", got.Metadata)
	}
}

func TestGetRunNotFound(t *testing.T) {
	svc := newTestDB(t)
	_, err := svc.GetRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRun(missing) error = %v, want ErrNotFound", err)
	}
}

// TestQueryRunsFilter checks ordering, status filtering, and paging.
func TestQueryRunsFilter(t *testing.T) {
	svc := newTestDB(t)
	base := time.Now().UnixNano()
	for i := 0; i < 5; i++ {
		run := seedRun(t, svc, fmt.Sprintf("run-%d", i), base+int64(i))
		if i%2 == 0 {
			run.Status = RunCompleted
			if err := svc.InsertRun(run); err != nil {
				t.Fatalf("InsertRun failed: %v", err)
			}
		}
	}

	all, err := svc.QueryRuns(RunFilter{})
	if err != nil {
		t.Fatalf("QueryRuns failed: %v", err)
	}
	if len(all) != 5 || all[0].RunID != "run-4" {
		t.Fatalf("QueryRuns returned %d runs starting at %v, want 5 starting at run-4", len(all), all[0].RunID)
	}

	completed := RunCompleted
	done, err := svc.QueryRuns(RunFilter{Status: &completed})
	if err != nil {
		t.Fatalf("QueryRuns(status) failed: %v", err)
	}
	if len(done) != 3 {
		t.Errorf("completed runs = %d, want 3", len(done))
	}

	since := base + 3
	recent, err := svc.QueryRuns(RunFilter{Since: &since})
	if err != nil {
		t.Fatalf("QueryRuns(since) failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("runs since base+3 = %d, want 2", len(recent))
	}

	page, err := svc.QueryRuns(RunFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("QueryRuns(page) failed: %v", err)
	}
	if len(page) != 2 || page[0].RunID != "run-2" {
		t.Errorf("page = %d runs starting at %v, want 2 starting at run-2", len(page), page[0].RunID)
	}
}

// TestArtifactsAndStats verifies batch insertion, slide ordering,
// and the aggregated run statistics.
func TestArtifactsAndStats(t *testing.T) {
	svc := newTestDB(t)
	now := time.Now().UnixNano()
	seedRun(t, svc, "run-a", now)

	slow := artifact("run-a", "concept-map", 6, now)
	slow.DurationMs = 250
	failed := artifact("run-a", "iceberg", 1, now)
	failed.Status = ArtifactError
	failed.Bytes = 0
	msg := "boom"
	failed.ErrorMessage = &msg

	batch := []*Artifact{slow, failed, artifact("run-a", "ripple", 4, now)}
	if err := svc.BatchInsertArtifacts(batch); err != nil {
		t.Fatalf("BatchInsertArtifacts failed: %v", err)
	}

	arts, err := svc.QueryArtifacts("run-a")
	if err != nil {
		t.Fatalf("QueryArtifacts failed: %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(arts))
	}
	for i, want := range []int{1, 4, 6} {
		if arts[i].Slide != want {
			t.Errorf("arts[%d].Slide = %d, want %d", i, arts[i].Slide, want)
		}
	}
	if arts[0].ErrorMessage == nil || *arts[0].ErrorMessage != "boom" {
		t.Errorf("error message not round-tripped: %v", arts[0].ErrorMessage)
	}

	stats, err := svc.GetRunStats("run-a")
	if err != nil {
		t.Fatalf("GetRunStats failed: %v", err)
	}
	if stats.Figures != 3 || stats.Succeeded != 2 || stats.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", stats.Figures, stats.Succeeded, stats.Failed)
	}
	if stats.TotalBytes != 2048 {
		t.Errorf("TotalBytes = %d, want 2048", stats.TotalBytes)
	}
	if stats.SlowestFigure != "concept-map" || stats.SlowestMs != 250 {
		t.Errorf("slowest = %s (%dms), want concept-map (250ms)", stats.SlowestFigure, stats.SlowestMs)
	}
}

func TestRunStatsEmpty(t *testing.T) {
	svc := newTestDB(t)
	stats, err := svc.GetRunStats("nothing")
	if err != nil {
		t.Fatalf("GetRunStats failed: %v", err)
	}
	if stats.Figures != 0 || stats.SlowestFigure != "" {
		t.Errorf("empty stats = %+v", stats)
	}
}

// TestBatchRollback verifies that a failing row leaves nothing behind.
func TestBatchRollback(t *testing.T) {
	svc := newTestDB(t)
	now := time.Now().UnixNano()
	seedRun(t, svc, "run-a", now)

	dup := artifact("run-a", "iceberg", 1, now)
	err := svc.BatchInsertArtifacts([]*Artifact{dup, dup})
	if err == nil {
		t.Fatal("expected a primary key violation")
	}

	arts, err := svc.QueryArtifacts("run-a")
	if err != nil {
		t.Fatalf("QueryArtifacts failed: %v", err)
	}
	if len(arts) != 0 {
		t.Errorf("got %d artifacts after rollback, want 0", len(arts))
	}
}

func TestArtifactRequiresRun(t *testing.T) {
	svc := newTestDB(t)
	if err := svc.InsertArtifact(artifact("ghost", "iceberg", 1, 1)); err == nil {
		t.Fatal("expected a foreign key violation for an unknown run")
	}
}

// TestLatestAndHistory checks that the newest artifact wins per figure
// and that history is newest first.
func TestLatestAndHistory(t *testing.T) {
	svc := newTestDB(t)
	base := time.Now().UnixNano()
	seedRun(t, svc, "run-1", base)
	seedRun(t, svc, "run-2", base+100)

	first := artifact("run-1", "iceberg", 1, base)
	first.SHA256 = "old"
	second := artifact("run-2", "iceberg", 1, base+100)
	second.SHA256 = "new"
	for _, a := range []*Artifact{first, artifact("run-1", "timeline", 3, base), second} {
		if err := svc.InsertArtifact(a); err != nil {
			t.Fatalf("InsertArtifact failed: %v", err)
		}
	}

	latest, err := svc.LatestArtifacts()
	if err != nil {
		t.Fatalf("LatestArtifacts failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("got %d latest artifacts, want 2", len(latest))
	}
	if latest[0].FigureID != "iceberg" || latest[0].SHA256 != "new" {
		t.Errorf("latest[0] = %s/%s, want iceberg/new", latest[0].FigureID, latest[0].SHA256)
	}

	hist, err := svc.FigureHistory("iceberg", 0)
	if err != nil {
		t.Fatalf("FigureHistory failed: %v", err)
	}
	if len(hist) != 2 || hist[0].RunID != "run-2" {
		t.Errorf("history = %d entries starting at %v, want 2 starting at run-2", len(hist), hist[0].RunID)
	}

	one, err := svc.FigureHistory("iceberg", 1)
	if err != nil {
		t.Fatalf("FigureHistory(limit) failed: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("limited history = %d, want 1", len(one))
	}
}

func TestFigureHistoryUntil(t *testing.T) {
	svc := newTestDB(t)
	base := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC).UnixNano()
	for i := 0; i < 3; i++ {
		runID := fmt.Sprintf("run-%d", i)
		if err := svc.InsertRun(&Run{RunID: runID, StartedAt: base + int64(i), Status: RunCompleted, Format: "png", DPI: 300}); err != nil {
			t.Fatalf("InsertRun failed: %v", err)
		}
		if err := svc.InsertArtifact(&Artifact{
			ArtifactID: runID + "/iceberg",
			RunID:      runID,
			FigureID:   "iceberg",
			Slide:      2,
			Status:     ArtifactOK,
			CreatedAt:  base + int64(10*i),
		}); err != nil {
			t.Fatalf("InsertArtifact failed: %v", err)
		}
	}

	hist, err := svc.FigureHistoryUntil("iceberg", base+10)
	if err != nil {
		t.Fatalf("FigureHistoryUntil failed: %v", err)
	}
	if len(hist) != 2 || hist[0].RunID != "run-1" || hist[1].RunID != "run-0" {
		t.Errorf("history until run-1 = %d entries, want run-1 then run-0", len(hist))
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	svc, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer svc.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}
