package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

const runColumns = "id, model, source_hash, backend, diagnostics, code, created_at"

// ListRuns returns the most recent runs, newest first. model filters by
// model name when non-empty. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, model string, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if model != "" {
		query += " WHERE model = ?"
		args = append(args, model)
	}
	// id is a UUIDv7, so this is creation order with a stable tiebreak.
	query += " ORDER BY id COLLATE BINARY DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun fetches one run's full artifacts by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ?", id)

	run, err := scanRunRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(rows *sql.Rows) (Run, error) {
	return scanRunRow(rows)
}

func scanRunRow(row rowScanner) (Run, error) {
	var run Run
	var createdAt string
	err := row.Scan(&run.ID, &run.Model, &run.SourceHash, &run.Backend,
		&run.Diagnostics, &run.Code, &createdAt)
	if err != nil {
		return Run{}, err
	}
	if ts, parseErr := time.Parse("2006-01-02T15:04:05.999Z", createdAt); parseErr == nil {
		run.CreatedAt = ts
	}
	return run, nil
}
