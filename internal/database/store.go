// Package database provides the storage layer for slidefigs.
//
// It records every render run and the artifact each figure produced,
// using SQLite with WAL mode. The DBService struct is the primary entry
// point for all database operations.
package database

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for render history persistence.
type Store interface {
	// InsertRun persists a run, or updates its end state if it exists.
	InsertRun(run *Run) error
	// InsertArtifact persists one rendered figure.
	InsertArtifact(a *Artifact) error
	// BatchInsertArtifacts inserts multiple artifacts in a single transaction.
	BatchInsertArtifacts(artifacts []*Artifact) error

	// QueryRuns returns runs matching the filter, most recent first.
	QueryRuns(filter RunFilter) ([]*Run, error)
	// GetRun returns one run or ErrNotFound.
	GetRun(runID string) (*Run, error)
	// QueryArtifacts returns the artifacts of a run in slide order.
	QueryArtifacts(runID string) ([]*Artifact, error)
	// LatestArtifacts returns the most recent artifact of every figure.
	LatestArtifacts() ([]*Artifact, error)
	// FigureHistory returns a figure's artifacts, most recent first.
	FigureHistory(figureID string, limit int) ([]*Artifact, error)
	// FigureHistoryUntil returns every artifact of a figure created at or
	// before until, most recent first.
	FigureHistoryUntil(figureID string, until int64) ([]*Artifact, error)
	// GetRunStats returns aggregated statistics for a run.
	GetRunStats(runID string) (*RunStats, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Artifact statuses.
const (
	ArtifactOK    = "ok"
	ArtifactError = "error"
)

// Run is one invocation of the renderer.
type Run struct {
	RunID      string            `json:"run_id"`
	StartedAt  int64             `json:"started_at"`
	FinishedAt *int64            `json:"finished_at,omitempty"`
	Status     string            `json:"status"`
	OutputDir  string            `json:"output_dir"`
	Format     string            `json:"format"`
	DPI        float64           `json:"dpi"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Artifact is the outcome of rendering one figure within a run.
type Artifact struct {
	ArtifactID   string  `json:"artifact_id"`
	RunID        string  `json:"run_id"`
	FigureID     string  `json:"figure_id"`
	Slide        int     `json:"slide"`
	Filename     string  `json:"filename"`
	Path         string  `json:"path"`
	Bytes        int64   `json:"bytes"`
	SHA256       string  `json:"sha256"`
	WidthPx      int     `json:"width_px"`
	HeightPx     int     `json:"height_px"`
	DurationMs   int64   `json:"duration_ms"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
	CreatedAt    int64   `json:"created_at"`
}

// RunFilter defines query parameters for run listing.
type RunFilter struct {
	Status *string `json:"status,omitempty"`
	Since  *int64  `json:"since,omitempty"` // Unix nanoseconds
	Until  *int64  `json:"until,omitempty"` // Unix nanoseconds
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// RunStats holds aggregated statistics for a single run.
type RunStats struct {
	RunID           string `json:"run_id"`
	Figures         int    `json:"figures"`
	Succeeded       int    `json:"succeeded"`
	Failed          int    `json:"failed"`
	TotalBytes      int64  `json:"total_bytes"`
	TotalDurationMs int64  `json:"total_duration_ms"`
	SlowestFigure   string `json:"slowest_figure,omitempty"`
	SlowestMs       int64  `json:"slowest_ms"`
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
// Writes are serialized through a read-write mutex.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtInsertRun      *sql.Stmt
	stmtInsertArtifact *sql.Stmt
}

// NewDBService opens (or creates) the database at path, applies the
// schema, and prepares the insert statements.
//
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite only supports one writer at a time; a single connection
	// also keeps a ":memory:" database alive for the service's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return svc, nil
}

// OpenFile creates the parent directory of path and opens the database.
func OpenFile(path string) (*DBService, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	return NewDBService(path)
}

// Path returns the database location.
func (s *DBService) Path() string { return s.path }

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsertRun, err = s.db.Prepare(`
		INSERT INTO runs (run_id, started_at, finished_at, status, output_dir, format, dpi, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			finished_at = COALESCE(excluded.finished_at, runs.finished_at),
			status = excluded.status,
			metadata = COALESCE(excluded.metadata, runs.metadata)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertRun: %w", err)
	}

	s.stmtInsertArtifact, err = s.db.Prepare(`
		INSERT INTO artifacts (artifact_id, run_id, figure_id, slide, filename, path, bytes,
			sha256, width_px, height_px, duration_ms, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertArtifact: %w", err)
	}

	return nil
}

// InsertRun persists a run. If the run already exists, its finish time,
// status and metadata are updated.
func (s *DBService) InsertRun(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON *string
	if run.Metadata != nil {
		b, err := json.Marshal(run.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling run metadata: %w", err)
		}
		str := string(b)
		metadataJSON = &str
	}

	_, err := s.stmtInsertRun.Exec(
		run.RunID, run.StartedAt, run.FinishedAt, run.Status,
		run.OutputDir, run.Format, run.DPI, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.RunID, err)
	}
	return nil
}

func artifactArgs(a *Artifact) []interface{} {
	return []interface{}{
		a.ArtifactID, a.RunID, a.FigureID, a.Slide, a.Filename, a.Path, a.Bytes,
		a.SHA256, a.WidthPx, a.HeightPx, a.DurationMs, a.Status, a.ErrorMessage, a.CreatedAt,
	}
}

// InsertArtifact persists one rendered figure.
func (s *DBService) InsertArtifact(a *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.stmtInsertArtifact.Exec(artifactArgs(a)...); err != nil {
		return fmt.Errorf("inserting artifact %s: %w", a.ArtifactID, err)
	}
	return nil
}

// BatchInsertArtifacts inserts multiple artifacts within a single
// transaction; either all of them land or none do.
func (s *DBService) BatchInsertArtifacts(artifacts []*Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch artifact transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt := tx.Stmt(s.stmtInsertArtifact)
	for _, a := range artifacts {
		if _, err := stmt.Exec(artifactArgs(a)...); err != nil {
			return fmt.Errorf("batch inserting artifact %s: %w", a.ArtifactID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch artifact transaction: %w", err)
	}
	return nil
}

const runColumns = `run_id, started_at, finished_at, status, output_dir, format, dpi, metadata`

// QueryRuns returns runs matching the given filter criteria.
// Results are ordered by started_at descending (most recent first).
func (s *DBService) QueryRuns(filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.Since != nil {
		query += ` AND started_at >= ?`
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query += ` AND started_at <= ?`
		args = append(args, *filter.Until)
	}

	query += ` ORDER BY started_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a single run.
func (s *DBService) GetRun(runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return r, err
}

const artifactColumns = `artifact_id, run_id, figure_id, slide, filename, path, bytes,
	sha256, width_px, height_px, duration_ms, status, error_message, created_at`

// QueryArtifacts returns all artifacts of a run, ordered by slide.
func (s *DBService) QueryArtifacts(runID string) ([]*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE run_id = ?
		ORDER BY slide ASC, created_at ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts for run %s: %w", runID, err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// LatestArtifacts returns the newest artifact of every figure that has
// ever been rendered, ordered by slide. This powers the TUI status dots.
func (s *DBService) LatestArtifacts() ([]*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT ` + artifactColumns + `
		FROM artifacts a
		WHERE a.rowid = (
			SELECT b.rowid FROM artifacts b
			WHERE b.figure_id = a.figure_id
			ORDER BY b.created_at DESC, b.rowid DESC
			LIMIT 1
		)
		ORDER BY slide ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying latest artifacts: %w", err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// FigureHistory returns the artifacts of one figure across runs, most
// recent first. A non-positive limit defaults to 50.
func (s *DBService) FigureHistory(figureID string, limit int) ([]*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE figure_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, figureID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history for figure %s: %w", figureID, err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// FigureHistoryUntil returns every artifact of one figure created at or
// before until (Unix nanoseconds), most recent first. Reports on an older
// run use it so later renders do not leak into the analysis.
func (s *DBService) FigureHistoryUntil(figureID string, until int64) ([]*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE figure_id = ? AND created_at <= ?
		ORDER BY created_at DESC, rowid DESC
	`, figureID, until)
	if err != nil {
		return nil, fmt.Errorf("querying history for figure %s: %w", figureID, err)
	}
	defer rows.Close()

	return scanArtifacts(rows)
}

// GetRunStats returns aggregated statistics for a run.
// Used by the CLI status command and the analysis engine.
func (s *DBService) GetRunStats(runID string) (*RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &RunStats{RunID: runID}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'ok' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(bytes), 0),
			COALESCE(SUM(duration_ms), 0)
		FROM artifacts
		WHERE run_id = ?
	`, runID).Scan(
		&stats.Figures, &stats.Succeeded, &stats.Failed,
		&stats.TotalBytes, &stats.TotalDurationMs,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run stats for %s: %w", runID, err)
	}

	if stats.Figures == 0 {
		return stats, nil
	}

	err = s.db.QueryRow(`
		SELECT figure_id, duration_ms FROM artifacts
		WHERE run_id = ?
		ORDER BY duration_ms DESC, slide ASC
		LIMIT 1
	`, runID).Scan(&stats.SlowestFigure, &stats.SlowestMs)
	if err != nil {
		return nil, fmt.Errorf("finding slowest figure for run %s: %w", runID, err)
	}

	return stats, nil
}

// Close gracefully shuts down the database, closing all prepared statements
// and the underlying connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []*sql.Stmt{s.stmtInsertRun, s.stmtInsertArtifact} {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	r := &Run{}
	var metadataStr *string
	if err := row.Scan(
		&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Status,
		&r.OutputDir, &r.Format, &r.DPI, &metadataStr,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run row: %w", err)
	}
	if metadataStr != nil {
		r.Metadata = make(map[string]string)
		if err := json.Unmarshal([]byte(*metadataStr), &r.Metadata); err != nil {
			// Non-fatal: metadata is supplementary
			r.Metadata = map[string]string{"_raw": *metadataStr}
		}
	}
	return r, nil
}

func scanArtifacts(rows *sql.Rows) ([]*Artifact, error) {
	var artifacts []*Artifact
	for rows.Next() {
		a := &Artifact{}
		if err := rows.Scan(
			&a.ArtifactID, &a.RunID, &a.FigureID, &a.Slide, &a.Filename, &a.Path, &a.Bytes,
			&a.SHA256, &a.WidthPx, &a.HeightPx, &a.DurationMs, &a.Status, &a.ErrorMessage, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning artifact row: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}
