// Package render is the driver that turns registered figures into files.
//
// A Run renders a selection of figures concurrently into one output
// directory, writes a manifest next to the images, and records the run in
// the history store when one is configured.
package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/figures"
	"github.com/Mr-Dark-debug/slidefigs/pkg/jsonutil"
	"github.com/Mr-Dark-debug/slidefigs/pkg/timeutil"
)

// ManifestName is the file written next to the images of every run.
const ManifestName = "manifest.json"

// ErrFiguresFailed is returned when at least one figure could not be
// rendered. The other figures of the run are still written.
var ErrFiguresFailed = errors.New("figures failed to render")

// Request selects what to render and where.
type Request struct {
	// Figures lists figure IDs; empty means all.
	Figures   []string
	OutputDir string
	Options   canvas.Options
	// Jobs bounds how many figures render at once; values below 1 mean 1.
	Jobs     int
	Env      figures.Env
	Metadata map[string]string
}

// Result is the outcome of one figure.
type Result struct {
	FigureID string        `json:"figure_id"`
	Slide    int           `json:"slide"`
	Title    string        `json:"title"`
	File     string        `json:"file"`
	Path     string        `json:"path"`
	Bytes    int64         `json:"bytes"`
	SHA256   string        `json:"sha256"`
	WidthPx  int           `json:"width_px"`
	HeightPx int           `json:"height_px"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Summary describes a finished run. Results are in slide order.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
	Failed     int
}

// Renderer runs render requests. The store may be nil, in which case
// nothing is recorded.
type Renderer struct {
	store  database.Store
	logger *zap.Logger
	now    func() time.Time

	// serializes history writes when several runs share a renderer
	recordMu sync.Mutex
}

// New creates a renderer. A nil logger is replaced with a no-op one.
func New(store database.Store, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{store: store, logger: logger, now: time.Now}
}

// Run renders the requested figures. Unknown figure IDs and invalid options
// fail before any file is touched. When figures fail, the returned summary
// is still complete and the error wraps ErrFiguresFailed; when ctx is
// canceled, pending figures are skipped and the error wraps ctx.Err().
func (r *Renderer) Run(ctx context.Context, req Request) (*Summary, error) {
	figs, err := figures.Select(req.Figures)
	if err != nil {
		return nil, err
	}
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}
	if req.Options.Format == "" {
		req.Options.Format = canvas.FormatPNG
	}
	if req.OutputDir == "" {
		req.OutputDir = "."
	}
	jobs := req.Jobs
	if jobs < 1 {
		jobs = 1
	}
	if req.Env.Now.IsZero() {
		req.Env.Now = r.now()
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	sum := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		Results:   make([]Result, len(figs)),
	}
	log := r.logger.With(zap.String("run_id", sum.RunID))
	log.Info("Render started",
		zap.Int("figures", len(figs)),
		zap.String("output_dir", req.OutputDir),
		zap.String("format", string(req.Options.Format)),
		zap.Float64("dpi", req.Options.DPI),
		zap.Int("jobs", jobs),
	)

	run := &database.Run{
		RunID:     sum.RunID,
		StartedAt: timeutil.ToNano(sum.StartedAt),
		Status:    database.RunRunning,
		OutputDir: req.OutputDir,
		Format:    string(req.Options.Format),
		DPI:       req.Options.DPI,
		Metadata:  req.Metadata,
	}
	r.record(log, func(s database.Store) error { return s.InsertRun(run) })

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, f := range figs {
		if gctx.Err() != nil {
			sum.Results[i] = skipped(f, req, gctx.Err())
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				sum.Results[i] = skipped(f, req, err)
				return err
			}
			sum.Results[i] = r.renderOne(f, req)
			res := sum.Results[i]
			if res.Err != nil {
				log.Error("Figure failed", zap.String("figure", f.ID), zap.Error(res.Err))
			} else {
				log.Debug("Figure rendered",
					zap.String("figure", f.ID),
					zap.String("path", res.Path),
					zap.Int64("bytes", res.Bytes),
					zap.Duration("took", res.Duration),
				)
			}
			return nil
		})
	}
	waitErr := g.Wait()
	sum.FinishedAt = r.now()

	for _, res := range sum.Results {
		if res.Err != nil {
			sum.Failed++
		}
	}

	r.record(log, func(s database.Store) error {
		return s.BatchInsertArtifacts(artifacts(sum))
	})
	finished := timeutil.ToNano(sum.FinishedAt)
	run.FinishedAt = &finished
	run.Status = database.RunCompleted
	if sum.Failed > 0 || waitErr != nil {
		run.Status = database.RunFailed
	}
	r.record(log, func(s database.Store) error { return s.InsertRun(run) })

	if err := jsonutil.WriteFile(filepath.Join(req.OutputDir, ManifestName), newManifest(sum, req)); err != nil {
		return sum, fmt.Errorf("writing manifest: %w", err)
	}

	log.Info("Render finished",
		zap.Int("figures", len(figs)),
		zap.Int("failed", sum.Failed),
		zap.Duration("took", sum.FinishedAt.Sub(sum.StartedAt)),
	)

	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("render canceled: %w", err)
	}
	if sum.Failed > 0 {
		return sum, fmt.Errorf("%d of %d: %w", sum.Failed, len(figs), ErrFiguresFailed)
	}
	return sum, nil
}

// record applies fn to the store, logging instead of failing the run.
func (r *Renderer) record(log *zap.Logger, fn func(database.Store) error) {
	if r.store == nil {
		return
	}
	r.recordMu.Lock()
	defer r.recordMu.Unlock()
	if err := fn(r.store); err != nil {
		log.Warn("Failed to record render history", zap.Error(err))
	}
}

func skipped(f figures.Figure, req Request, err error) Result {
	res := baseResult(f, req)
	res.Err = err
	return res
}

func baseResult(f figures.Figure, req Request) Result {
	file := f.File(req.Options.Format)
	w, h := f.PixelSize(req.Options.DPI)
	return Result{
		FigureID: f.ID,
		Slide:    f.Slide,
		Title:    f.Title,
		File:     file,
		Path:     filepath.Join(req.OutputDir, file),
		WidthPx:  w,
		HeightPx: h,
	}
}

func (r *Renderer) renderOne(f figures.Figure, req Request) Result {
	start := r.now()
	res := baseResult(f, req)

	var buf bytes.Buffer
	if err := f.Render(&buf, req.Options, req.Env); err != nil {
		res.Err = err
		res.Duration = r.now().Sub(start)
		return res
	}

	sum := sha256.Sum256(buf.Bytes())
	res.SHA256 = hex.EncodeToString(sum[:])
	res.Bytes = int64(buf.Len())

	if err := writeAtomic(res.Path, &buf); err != nil {
		res.Err = fmt.Errorf("figure %s: %w", f.ID, err)
	}
	res.Duration = r.now().Sub(start)
	return res
}

// writeAtomic writes through a temp file in the target directory so a
// reader never sees a partially written image.
func writeAtomic(path string, src io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // No-op after a successful rename

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

func artifacts(sum *Summary) []*database.Artifact {
	created := timeutil.ToNano(sum.FinishedAt)
	out := make([]*database.Artifact, 0, len(sum.Results))
	for _, res := range sum.Results {
		a := &database.Artifact{
			ArtifactID: uuid.NewString(),
			RunID:      sum.RunID,
			FigureID:   res.FigureID,
			Slide:      res.Slide,
			Filename:   res.File,
			Path:       res.Path,
			Bytes:      res.Bytes,
			SHA256:     res.SHA256,
			WidthPx:    res.WidthPx,
			HeightPx:   res.HeightPx,
			DurationMs: res.Duration.Milliseconds(),
			Status:     database.ArtifactOK,
			CreatedAt:  created,
		}
		if res.Err != nil {
			msg := res.Err.Error()
			a.Status = database.ArtifactError
			a.ErrorMessage = &msg
		}
		out = append(out, a)
	}
	return out
}

// WriteListing prints the produced files the way the slide deck expects
// them: one "Slide N: <file>" line per successful figure.
func (s *Summary) WriteListing(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Created the following visual files:"); err != nil {
		return err
	}
	for _, res := range s.Results {
		if res.Err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "Slide %d: %s\n", res.Slide, res.File); err != nil {
			return err
		}
	}
	return nil
}
