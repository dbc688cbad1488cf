// Package gallery serves the slide figures over HTTP.
//
// Figures are rendered on demand and kept in a bounded LRU cache per
// figure, format, resolution and calendar day (the development plan prints
// today's date).
// The server also exposes health, Prometheus-style metrics and, when a
// store is configured, the render history.
//
// Routes:
//
//	GET /health
//	GET /metrics            Prometheus text format
//	GET /api/metrics        the same counters as JSON
//	GET /api/figures        the registry
//	GET /api/runs           recent runs (store required)
//	GET /api/runs/{id}      analysis report of one run (store required)
//	GET /figures/{id}       the rendered image; ?format=png|svg, ?dpi=N
package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Mr-Dark-debug/slidefigs/internal/analysis"
	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/database"
	"github.com/Mr-Dark-debug/slidefigs/internal/figures"
)

// MaxDPI caps the resolution a client may request.
const MaxDPI = 600

// DefaultCacheSize is the number of rendered images kept in memory.
const DefaultCacheSize = 64

// Gallery defines the lifecycle of the figure server.
type Gallery interface {
	// Start begins serving on the configured address.
	Start(ctx context.Context) error
	// Stop gracefully shuts the server down.
	Stop() error
	// Metrics returns the current counters.
	Metrics() Metrics
}

// Metrics tracks what the server has done since it started.
type Metrics struct {
	FiguresServed int64 `json:"figures_served"`
	Renders       int64 `json:"renders"`
	CacheHits     int64 `json:"cache_hits"`
	ErrorCount    int64 `json:"error_count"`
	CachedImages  int   `json:"cached_images"`
	Uptime        int64 `json:"uptime_seconds"`
}

// Config holds configuration for the gallery server.
type Config struct {
	// ListenAddr is the TCP address to serve on.
	ListenAddr string
	// Options are the defaults for /figures/{id}.
	Options canvas.Options
	// CacheSize bounds the image cache; 0 means DefaultCacheSize.
	CacheSize int
}

type cacheKey struct {
	id     string
	format canvas.Format
	dpi    float64
	day    string
}

// Server is the production implementation of Gallery.
type Server struct {
	config Config
	store  database.Store
	logger *zap.Logger
	now    func() time.Time

	renders   atomic.Int64
	served    atomic.Int64
	cacheHits atomic.Int64
	errors    atomic.Int64

	// mu guards cacheDay; the cache locks itself
	mu       sync.Mutex
	cacheDay string
	cache    *lru.Cache[cacheKey, []byte]
	flight   singleflight.Group

	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopErr    error
	started    time.Time
}

// NewServer creates a gallery server. The store may be nil, in which case
// the run history endpoints answer 503.
func NewServer(config Config, store database.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Options.Format == "" {
		config.Options.Format = canvas.FormatPNG
	}
	if config.CacheSize < 1 {
		config.CacheSize = DefaultCacheSize
	}
	// New only fails for a non-positive size
	cache, _ := lru.New[cacheKey, []byte](config.CacheSize)
	return &Server{
		config:  config,
		store:   store,
		logger:  logger,
		now:     time.Now,
		cache:   cache,
		started: time.Now(),
	}
}

// Start begins listening and serves requests in the background until ctx
// is canceled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	if err := s.config.Options.Validate(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.ListenAddr, err)
	}
	s.listener = listener
	s.started = s.now()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Gallery server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("Gallery listening", zap.String("url", "http://"+s.Addr()))
	return nil
}

// Addr returns the bound address, which differs from the configured one
// when port 0 was requested.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.ListenAddr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server. It is safe to call more than once.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.stopErr = fmt.Errorf("shutting down gallery: %w", err)
		}
		s.wg.Wait()
	})
	return s.stopErr
}

// Metrics returns a snapshot of the server counters.
func (s *Server) Metrics() Metrics {
	cached := s.cache.Len()
	return Metrics{
		FiguresServed: s.served.Load(),
		Renders:       s.renders.Load(),
		CacheHits:     s.cacheHits.Load(),
		ErrorCount:    s.errors.Load(),
		CachedImages:  cached,
		Uptime:        int64(s.now().Sub(s.started).Seconds()),
	}
}

// Handler returns the routes of the gallery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/metrics", s.handleMetricsJSON)
	mux.HandleFunc("GET /api/figures", s.handleFigures)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleRunReport)
	mux.HandleFunc("GET /figures/{id}", s.handleFigure)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.Metrics()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	metric := func(name, kind, help string, v int64) {
		fmt.Fprintf(w, "# HELP slidefigs_%s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE slidefigs_%s %s\n", name, kind)
		fmt.Fprintf(w, "slidefigs_%s %d\n", name, v)
	}
	metric("figures_served_total", "counter", "Total figure responses", m.FiguresServed)
	metric("renders_total", "counter", "Total figures rendered", m.Renders)
	metric("cache_hits_total", "counter", "Total figure cache hits", m.CacheHits)
	metric("errors_total", "counter", "Total request errors", m.ErrorCount)
	metric("cached_images", "gauge", "Images held in the cache", int64(m.CachedImages))
	metric("uptime_seconds", "gauge", "Uptime in seconds", m.Uptime)
}

func (s *Server) handleMetricsJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Metrics())
}

// FigureInfo is the registry entry served by /api/figures.
type FigureInfo struct {
	ID       string  `json:"id"`
	Slide    int     `json:"slide"`
	Title    string  `json:"title"`
	Filename string  `json:"filename"`
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
	URL      string  `json:"url"`
}

func (s *Server) handleFigures(w http.ResponseWriter, r *http.Request) {
	all := figures.All()
	out := make([]FigureInfo, 0, len(all))
	for _, f := range all {
		out = append(out, FigureInfo{
			ID:       f.ID,
			Slide:    f.Slide,
			Title:    f.Title,
			Filename: f.Filename,
			WidthIn:  f.Width,
			HeightIn: f.Height,
			URL:      "/figures/" + f.ID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, http.StatusServiceUnavailable, "no history store configured")
		return
	}
	filter := database.RunFilter{Limit: 20}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.fail(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	runs, err := s.store.QueryRuns(filter)
	if err != nil {
		s.logger.Error("Querying runs", zap.Error(err))
		s.fail(w, http.StatusInternalServerError, "querying runs failed")
		return
	}
	if runs == nil {
		runs = []*database.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, http.StatusServiceUnavailable, "no history store configured")
		return
	}
	report, err := analysis.NewAnalyzer(s.store).FullAnalysis(r.PathValue("id"))
	if errors.Is(err, database.ErrNotFound) {
		s.fail(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("Analyzing run", zap.Error(err))
		s.fail(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	fig, err := figures.Lookup(r.PathValue("id"))
	if err != nil {
		s.fail(w, http.StatusNotFound, err.Error())
		return
	}

	opts := s.config.Options
	q := r.URL.Query()
	if v := q.Get("format"); v != "" {
		if opts.Format, err = canvas.ParseFormat(v); err != nil {
			s.fail(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := q.Get("dpi"); v != "" {
		dpi, err := strconv.ParseFloat(v, 64)
		if err != nil || !(dpi >= 1 && dpi <= MaxDPI) {
			s.fail(w, http.StatusBadRequest, fmt.Sprintf("dpi must be in [1, %d]", MaxDPI))
			return
		}
		// whole dots only, so near-identical requests share a cache entry
		opts.DPI = math.Round(dpi)
	}

	img, err := s.image(fig, opts)
	if err != nil {
		s.logger.Error("Rendering figure", zap.String("figure", fig.ID), zap.Error(err))
		s.fail(w, http.StatusInternalServerError, "rendering failed")
		return
	}

	s.served.Add(1)
	w.Header().Set("Content-Type", opts.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fig.File(opts.Format)))
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// image returns the cached bytes for a figure, rendering them once when
// several requests miss at the same time. Images from earlier days are
// dropped on the first request of a new day.
func (s *Server) image(fig figures.Figure, opts canvas.Options) ([]byte, error) {
	now := s.now()
	day := now.Format("2006-01-02")
	key := cacheKey{id: fig.ID, format: opts.Format, dpi: opts.DPI, day: day}

	s.mu.Lock()
	if day != s.cacheDay {
		s.cache.Purge()
		s.cacheDay = day
	}
	s.mu.Unlock()

	if img, ok := s.cache.Get(key); ok {
		s.cacheHits.Add(1)
		return img, nil
	}

	v, err, _ := s.flight.Do(fmt.Sprintf("%v", key), func() (interface{}, error) {
		var buf bytes.Buffer
		if err := fig.Render(&buf, opts, figures.Env{Now: now}); err != nil {
			return nil, err
		}
		s.renders.Add(1)
		s.cache.Add(key, buf.Bytes())
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	s.errors.Add(1)
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
