// Package postgres provides the PostgreSQL run archive.
//
// Finished ranking runs are persisted here so operators can inspect past
// results after the in-memory registry has moved on to newer runs. The
// adapter works against a minimal pgx pool interface for easy testing.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

// PgxPool is the minimal subset of pgxpool used by the repo.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RunRepo persists finished runs using a minimal pgx pool.
type RunRepo struct{ Pool PgxPool }

// NewRunRepo constructs a RunRepo with the given pool.
func NewRunRepo(p PgxPool) *RunRepo { return &RunRepo{Pool: p} }

const runsSchema = `CREATE TABLE IF NOT EXISTS candidate_runs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	candidates_total INT NOT NULL,
	model TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	results JSONB NOT NULL DEFAULT '[]',
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS candidate_runs_started_at_idx ON candidate_runs (started_at DESC)`

// EnsureSchema creates the archive table when it does not exist yet.
func (r *RunRepo) EnsureSchema(ctx domain.Context) error {
	tracer := otel.Tracer("repo.runs")
	ctx, span := tracer.Start(ctx, "runs.EnsureSchema")
	defer span.End()
	if _, err := r.Pool.Exec(ctx, runsSchema); err != nil {
		return fmt.Errorf("op=run.ensure_schema: %w", err)
	}
	return nil
}

// Save inserts or updates an archived run by id. Results are stored as JSONB
// in ranked order.
func (r *RunRepo) Save(ctx domain.Context, rec domain.RunRecord) error {
	tracer := otel.Tracer("repo.runs")
	ctx, span := tracer.Start(ctx, "runs.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "candidate_runs"),
	)
	results := rec.Results
	if results == nil {
		results = []domain.ScoredCandidate{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("op=run.save: %w", err)
	}
	q := `INSERT INTO candidate_runs (id, status, candidates_total, model, error, results, started_at, finished_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	ON CONFLICT (id)
	DO UPDATE SET status=EXCLUDED.status, candidates_total=EXCLUDED.candidates_total, model=EXCLUDED.model, error=EXCLUDED.error, results=EXCLUDED.results, finished_at=EXCLUDED.finished_at`
	_, err = r.Pool.Exec(ctx, q, rec.RunID, rec.Status, rec.CandidatesTotal, rec.Model, rec.Error, payload, rec.StartedAt.UTC(), rec.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("op=run.save: %w", err)
	}
	return nil
}

// ListRecent returns up to limit archived runs, newest first.
func (r *RunRepo) ListRecent(ctx domain.Context, limit int) ([]domain.RunRecord, error) {
	tracer := otel.Tracer("repo.runs")
	ctx, span := tracer.Start(ctx, "runs.ListRecent")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "candidate_runs"),
	)
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id, status, candidates_total, model, error, results, started_at, finished_at FROM candidate_runs ORDER BY started_at DESC LIMIT $1`
	rows, err := r.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("op=run.list_recent: %w", err)
	}
	defer rows.Close()
	var out []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var payload []byte
		if err := rows.Scan(&rec.RunID, &rec.Status, &rec.CandidatesTotal, &rec.Model, &rec.Error, &payload, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("op=run.list_recent: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Results); err != nil {
			return nil, fmt.Errorf("op=run.list_recent: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=run.list_recent: %w", err)
	}
	return out, nil
}
