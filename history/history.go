// Package history persists correction runs to a local SQLite database.
//
// # Thread Safety
//
// Store is safe for concurrent use. The underlying sql.DB handles connection
// pooling and serialization; every operation here is a single statement.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/wudi/ocrkit/correct"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("history: run not found")

// Run is one recorded correction run.
type Run struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	Filename      string           `json:"filename,omitempty"`
	OriginalText  string           `json:"original_text"`
	CorrectedText string           `json:"corrected_text"`
	Confidence    float64          `json:"confidence"`
	ProcessingMS  int64            `json:"processing_ms"`
	MethodsUsed   []string         `json:"methods_used"`
	Corrections   []correct.Record `json:"corrections"`
}

// FromResult builds a Run from a pipeline result. The returned run has no
// ID or timestamp yet; Save assigns both.
func FromResult(filename, original string, res *correct.Result) Run {
	return Run{
		Filename:      filename,
		OriginalText:  original,
		CorrectedText: res.CorrectedText,
		Confidence:    res.Confidence,
		ProcessingMS:  res.ProcessingTime.Milliseconds(),
		MethodsUsed:   append([]string(nil), res.MethodsUsed...),
		Corrections:   append([]correct.Record(nil), res.Corrections...),
	}
}

// Store records correction runs for the service's audit endpoints.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at dbPath and applies
// migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		original_text TEXT NOT NULL,
		corrected_text TEXT NOT NULL,
		confidence REAL NOT NULL,
		processing_ms INTEGER NOT NULL,
		methods_used TEXT NOT NULL DEFAULT '',
		corrections TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save records a run. A missing ID or timestamp is filled in, and the
// completed run is returned.
func (s *Store) Save(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	corrections, err := json.Marshal(run.Corrections)
	if err != nil {
		return Run{}, fmt.Errorf("encode corrections: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, filename, original_text, corrected_text,
			confidence, processing_ms, methods_used, corrections)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Filename, run.OriginalText, run.CorrectedText,
		run.Confidence, run.ProcessingMS, strings.Join(run.MethodsUsed, ","), string(corrections),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Get fetches a single run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, filename, original_text, corrected_text,
			confidence, processing_ms, methods_used, corrections
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return run, nil
}

// Recent returns the newest runs, most recent first. A non-positive limit
// defaults to 20; the hard cap is 100.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, filename, original_text, corrected_text,
			confidence, processing_ms, methods_used, corrections
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run         Run
		methods     string
		corrections string
	)
	err := row.Scan(&run.ID, &run.CreatedAt, &run.Filename, &run.OriginalText,
		&run.CorrectedText, &run.Confidence, &run.ProcessingMS, &methods, &corrections)
	if err != nil {
		return Run{}, err
	}
	if methods != "" {
		run.MethodsUsed = strings.Split(methods, ",")
	}
	if err := json.Unmarshal([]byte(corrections), &run.Corrections); err != nil {
		return Run{}, fmt.Errorf("decode corrections: %w", err)
	}
	return run, nil
}
