// Package db provides PostgreSQL storage for fill-pass history.
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/formfill/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the history tables when they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveReport stores a finished fill pass and its per-field results in one
// transaction. Saving the same run again replaces its results.
func (db *DB) SaveReport(ctx context.Context, report *types.FillReport) error {
	run := RunFromReport(report)
	rows := ResultRows(report)

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO fill_runs (id, form_url, status, filled, skipped, failed, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET status = $3, filled = $4, skipped = $5, failed = $6, completed_at = $8`,
		run.ID, run.FormURL, run.Status, run.Filled, run.Skipped, run.Failed, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM fill_results WHERE run_id = $1`, run.ID)
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO fill_results (run_id, position, question_text, modality, rule, value, outcome, error_message, duration_ms)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			run.ID, r.Position, r.QuestionText, r.Modality, r.Rule, r.Value, r.Outcome, r.ErrorMessage, r.DurationMs,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a fill run by ID; nil when it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, form_url, status, filled, skipped, failed, started_at, completed_at
		 FROM fill_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.FormURL, &run.Status, &run.Filled, &run.Skipped, &run.Failed,
		&run.StartedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, form_url, status, filled, skipped, failed, started_at, completed_at
		 FROM fill_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.FormURL, &run.Status, &run.Filled, &run.Skipped, &run.Failed,
			&run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListResults returns the stored field outcomes of a run in form order
func (db *DB) ListResults(ctx context.Context, runID uuid.UUID) ([]ResultRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT position, question_text, modality, rule, value, outcome, error_message, duration_ms
		 FROM fill_results WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.Position, &r.QuestionText, &r.Modality, &r.Rule, &r.Value,
			&r.Outcome, &r.ErrorMessage, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RunFromReport summarizes a report as a run record.
func RunFromReport(report *types.FillReport) Run {
	run := Run{
		ID:        report.RunID,
		FormURL:   report.URL,
		Status:    StatusCompleted,
		Filled:    report.Count(types.OutcomeFilled),
		Skipped:   report.Count(types.OutcomeSkipped),
		Failed:    report.Count(types.OutcomeFailed),
		StartedAt: report.StartedAt,
	}
	if run.Failed > 0 {
		run.Status = StatusPartial
	}
	if report.FinishedAt.IsZero() {
		run.Status = StatusRunning
	} else {
		finished := report.FinishedAt
		run.CompletedAt = &finished
	}
	return run
}

// ResultRows flattens report results into rows keyed by form position.
func ResultRows(report *types.FillReport) []ResultRow {
	rows := make([]ResultRow, 0, len(report.Results))
	for _, res := range report.Results {
		row := ResultRow{
			Position:     res.Field.Position,
			QuestionText: res.Field.QuestionText,
			Modality:     string(res.Field.Modality),
			Rule:         optional(res.Rule),
			Value:        optional(res.Value),
			Outcome:      string(res.Outcome),
			DurationMs:   res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			msg := res.Err.Error()
			row.ErrorMessage = &msg
		}
		rows = append(rows, row)
	}
	return rows
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
