package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a translation run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations still return errors.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("write run: missing id")
	}
	if run.Diagnostics == "" {
		run.Diagnostics = "[]"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, model, source_hash, backend, diagnostics, code)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Model,
		run.SourceHash,
		run.Backend,
		run.Diagnostics,
		run.Code,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}
