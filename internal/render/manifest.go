package render

import "time"

// Manifest is the JSON document written next to the images.
type Manifest struct {
	RunID       string          `json:"run_id"`
	GeneratedAt string          `json:"generated_at"`
	Format      string          `json:"format"`
	DPI         float64         `json:"dpi"`
	Figures     []ManifestEntry `json:"figures"`
}

// ManifestEntry lists one figure of the run.
type ManifestEntry struct {
	Slide      int    `json:"slide"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	File       string `json:"file"`
	Bytes      int64  `json:"bytes,omitempty"`
	SHA256     string `json:"sha256,omitempty"`
	WidthPx    int    `json:"width_px"`
	HeightPx   int    `json:"height_px"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func newManifest(sum *Summary, req Request) Manifest {
	m := Manifest{
		RunID:       sum.RunID,
		GeneratedAt: sum.FinishedAt.UTC().Format(time.RFC3339),
		Format:      string(req.Options.Format),
		DPI:         req.Options.DPI,
		Figures:     make([]ManifestEntry, 0, len(sum.Results)),
	}
	for _, res := range sum.Results {
		e := ManifestEntry{
			Slide:      res.Slide,
			ID:         res.FigureID,
			Title:      res.Title,
			File:       res.File,
			Bytes:      res.Bytes,
			SHA256:     res.SHA256,
			WidthPx:    res.WidthPx,
			HeightPx:   res.HeightPx,
			DurationMs: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
		m.Figures = append(m.Figures, e)
	}
	return m
}
