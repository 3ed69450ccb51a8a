package store

import (
	"context"
	"fmt"
	"time"

	"agentd/internal/agent"
)

// Record inserts one execution record. Satisfies agent.ExecutionRecorder.
func (s *Store) Record(ctx context.Context, exec *agent.CommandExecution) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO executions (id, command, working_dir, status, stdout, stderr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, exec.ID, exec.Command, exec.WorkingDir, exec.Status, exec.Stdout, exec.Stderr,
		exec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// ListExecutions returns the most recent executions, newest first.
func (s *Store) ListExecutions(ctx context.Context, limit int) ([]*agent.CommandExecution, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, command, working_dir, status, stdout, stderr, created_at
		FROM executions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var execs []*agent.CommandExecution
	for rows.Next() {
		var (
			exec      agent.CommandExecution
			createdAt string
		)
		if err := rows.Scan(&exec.ID, &exec.Command, &exec.WorkingDir, &exec.Status,
			&exec.Stdout, &exec.Stderr, &createdAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid stored time %q: %w", createdAt, err)
		}
		exec.CreatedAt = t
		execs = append(execs, &exec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return execs, nil
}

// PruneExecutions deletes all but the newest keep records.
func (s *Store) PruneExecutions(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.DB.ExecContext(ctx, `
		DELETE FROM executions
		WHERE id NOT IN (
			SELECT id FROM executions ORDER BY created_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("prune executions: %w", err)
	}
	return nil
}
