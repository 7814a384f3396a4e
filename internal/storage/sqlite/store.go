// Package sqlite provides a SQLite-backed run storage implementation.
package sqlite

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

	"github.com/Truvis/CodeDrop/internal/platform/storage/sqlitemigrate"
	"github.com/Truvis/CodeDrop/internal/storage"
	"github.com/Truvis/CodeDrop/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DefaultListLimit bounds ListRuns when the caller passes a non-positive limit.
const DefaultListLimit = 20

// Store persists runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.RunStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite run store and applies embedded migrations. The parent
// directory of path is created when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutRun inserts one run record.
func (s *Store) PutRun(ctx context.Context, run storage.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	runID := strings.TrimSpace(run.ID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	switch run.Kind {
	case storage.RunKindFlip, storage.RunKindRoll:
	default:
		return fmt.Errorf("run kind %q is not supported", run.Kind)
	}
	if run.Count != len(run.Outcomes) {
		return fmt.Errorf("run count %d does not match %d outcomes", run.Count, len(run.Outcomes))
	}
	outcomes, err := json.Marshal(run.Outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO runs (
		   id,
		   kind,
		   seed,
		   seed_source,
		   bias,
		   lower_bound,
		   span,
		   sampling,
		   count,
		   outcomes,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		string(run.Kind),
		run.Seed,
		string(run.SeedSource),
		run.Bias,
		run.LowerBound,
		run.Span,
		run.Sampling,
		run.Count,
		string(outcomes),
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RunRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RunRecord{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, strings.TrimSpace(id))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.RunRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectRuns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]storage.RunRecord, 0, limit)
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

const selectRuns = `SELECT id, kind, seed, seed_source, bias, lower_bound, span, sampling, count, outcomes, created_at FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (storage.RunRecord, error) {
	var (
		run        storage.RunRecord
		kind       string
		seedSource string
		outcomes   string
		createdAt  int64
	)
	if err := row.Scan(
		&run.ID,
		&kind,
		&run.Seed,
		&seedSource,
		&run.Bias,
		&run.LowerBound,
		&run.Span,
		&run.Sampling,
		&run.Count,
		&outcomes,
		&createdAt,
	); err != nil {
		return storage.RunRecord{}, err
	}
	if err := json.Unmarshal([]byte(outcomes), &run.Outcomes); err != nil {
		return storage.RunRecord{}, fmt.Errorf("decode outcomes: %w", err)
	}
	run.Kind = storage.RunKind(kind)
	run.SeedSource = storage.SeedSource(seedSource)
	run.CreatedAt = fromMillis(createdAt)
	return run, nil
}
