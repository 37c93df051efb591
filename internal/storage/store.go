package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/elastosim/internal/config"
	"github.com/san-kum/elastosim/internal/export"
	"github.com/san-kum/elastosim/internal/relax"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("storage: run not found")

const dbName = "runs.db"

// Store indexes runs in SQLite and keeps their final fields as CSV under
// one directory per run.
type Store struct {
	baseDir string
	db      *sql.DB
}

func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, dbName)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{baseDir: baseDir, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		grid_size INTEGER NOT NULL,
		young REAL NOT NULL,
		poisson REAL NOT NULL,
		step_size REAL NOT NULL,
		iterations INTEGER NOT NULL,
		converged INTEGER NOT NULL DEFAULT 0,
		first_residual REAL NOT NULL DEFAULT 0,
		final_residual REAL NOT NULL DEFAULT 0,
		elapsed_ns INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		config JSON NOT NULL,
		metrics JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trace (
		run_id TEXT NOT NULL,
		iteration INTEGER NOT NULL,
		residual REAL NOT NULL,
		PRIMARY KEY (run_id, iteration),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	GridSize      int                `json:"grid_size"`
	Young         float64            `json:"young"`
	Poisson       float64            `json:"poisson"`
	StepSize      float64            `json:"step_size"`
	Iterations    int                `json:"iterations"`
	Converged     bool               `json:"converged"`
	FirstResidual float64            `json:"first_residual"`
	FinalResidual float64            `json:"final_residual"`
	Elapsed       time.Duration      `json:"elapsed"`
	Error         string             `json:"error,omitempty"`
	Config        *config.Config     `json:"config"`
	Metrics       map[string]float64 `json:"metrics"`
}

func runID(name string, t time.Time) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("%s_%d", name, t.UnixNano())
}

// Save records a run. runErr is the error the solve ended with, if any;
// partial results are stored alongside it.
func (s *Store) Save(ctx context.Context, name string, cfg *config.Config, res *relax.Result, runErr error) (id string, err error) {
	now := time.Now()
	id = runID(name, now)

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	metricsJSON, err := json.Marshal(export.FloatMap(res.Metrics))
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics: %w", err)
	}

	var first, final float64
	if len(res.Trace) > 0 {
		first, final = res.Trace[0], res.Residual()
	}
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}

	runDir := filepath.Dir(s.FieldsPath(id))
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()
	if err := writeFields(s.FieldsPath(id), res); err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, created_at, grid_size, young, poisson, step_size,
			iterations, converged, first_residual, final_residual, elapsed_ns, error, config, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, name, now.UnixNano(), cfg.GridSize, cfg.Material.Young, cfg.Material.Poisson, cfg.StepSize(),
		res.Iterations, boolToInt(res.Converged), sanitize(first), sanitize(final), int64(res.Elapsed),
		errText, string(cfgJSON), string(metricsJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO trace (run_id, iteration, residual) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare trace insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range res.Trace {
		if _, err := stmt.ExecContext(ctx, id, i, sanitize(r)); err != nil {
			return "", fmt.Errorf("failed to insert trace: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

const selectRun = `
	SELECT id, name, created_at, grid_size, young, poisson, step_size, iterations,
		converged, first_residual, final_residual, elapsed_ns, error, config, metrics
	FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunMetadata, error) {
	var (
		meta                RunMetadata
		created, elapsed    int64
		converged           int
		cfgJSON, metricJSON []byte
	)
	err := row.Scan(&meta.ID, &meta.Name, &created, &meta.GridSize, &meta.Young, &meta.Poisson,
		&meta.StepSize, &meta.Iterations, &converged, &meta.FirstResidual, &meta.FinalResidual,
		&elapsed, &meta.Error, &cfgJSON, &metricJSON)
	if err != nil {
		return nil, err
	}

	meta.Timestamp = time.Unix(0, created)
	meta.Elapsed = time.Duration(elapsed)
	meta.Converged = converged != 0
	meta.Config = config.DefaultConfig()
	if err := json.Unmarshal(cfgJSON, meta.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	var metrics map[string]export.Float
	if err := json.Unmarshal(metricJSON, &metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	meta.Metrics = export.Float64Map(metrics)
	return &meta, nil
}

// List returns every run, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

func (s *Store) Load(ctx context.Context, id string) (*RunMetadata, error) {
	meta, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return meta, nil
}

func (s *Store) LoadTrace(ctx context.Context, id string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT residual FROM trace WHERE run_id = ? ORDER BY iteration`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query trace: %w", err)
	}
	defer rows.Close()

	trace := make([]float64, 0)
	for rows.Next() {
		var r float64
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan trace: %w", err)
		}
		trace = append(trace, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trace: %w", err)
	}
	return trace, nil
}

// LoadResult rebuilds the stored result of a run.
func (s *Store) LoadResult(ctx context.Context, id string) (*relax.Result, error) {
	meta, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := readFields(s.FieldsPath(id), meta.GridSize)
	if err != nil {
		return nil, err
	}
	if res.Trace, err = s.LoadTrace(ctx, id); err != nil {
		return nil, err
	}
	res.Iterations = meta.Iterations
	res.Converged = meta.Converged
	res.Metrics = meta.Metrics
	res.Elapsed = meta.Elapsed
	return res, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trace WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete trace: %w", err)
	}
	out, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, id))
}

// FieldsPath is the CSV file holding the final fields of a run.
func (s *Store) FieldsPath(id string) string {
	return filepath.Join(s.baseDir, id, "fields.csv")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
