package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/core/domain"
)

// eventRow is the recovery_events table shape.
type eventRow struct {
	ID           string    `db:"id"`
	TerminalID   string    `db:"terminal_id"`
	Kind         string    `db:"kind"`
	RecoveryType string    `db:"recovery_type"`
	Action       string    `db:"action"`
	Attempt      int       `db:"attempt"`
	ElapsedMS    int64     `db:"elapsed_ms"`
	Reason       string    `db:"reason"`
	CreatedAt    time.Time `db:"created_at"`
}

// EventRepo persists recovery events for the status CLI and post-incident review.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a new event repository.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// Insert stores one recovery event.
func (r *EventRepo) Insert(ctx context.Context, ev *domain.RecoveryEvent) error {
	row := eventRow{
		ID:           ev.ID,
		TerminalID:   ev.TerminalID,
		Kind:         string(ev.Kind),
		RecoveryType: string(ev.RecoveryType),
		Action:       ev.Action,
		Attempt:      ev.Attempt,
		ElapsedMS:    ev.Elapsed.Milliseconds(),
		Reason:       ev.Reason,
		CreatedAt:    ev.At,
	}
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	const q = `
		INSERT INTO recovery_events
			(id, terminal_id, kind, recovery_type, action, attempt, elapsed_ms, reason, created_at)
		VALUES
			(:id, :terminal_id, :kind, :recovery_type, :action, :attempt, :elapsed_ms, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("failed to insert recovery event: %w", err)
	}
	return nil
}

// Recent returns up to limit events for a terminal, newest first.
func (r *EventRepo) Recent(ctx context.Context, terminalID string, limit int) ([]*domain.RecoveryEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
		SELECT id, terminal_id, kind, recovery_type, action, attempt, elapsed_ms, reason, created_at
		FROM recovery_events
		WHERE terminal_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, q, terminalID, limit); err != nil {
		return nil, fmt.Errorf("failed to query recovery events: %w", err)
	}

	events := make([]*domain.RecoveryEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, &domain.RecoveryEvent{
			ID:           row.ID,
			TerminalID:   row.TerminalID,
			Kind:         domain.EventKind(row.Kind),
			RecoveryType: domain.RecoveryType(row.RecoveryType),
			Action:       row.Action,
			Attempt:      row.Attempt,
			Elapsed:      time.Duration(row.ElapsedMS) * time.Millisecond,
			Reason:       row.Reason,
			At:           row.CreatedAt,
		})
	}
	return events, nil
}

// Purge removes all events for a terminal. Used by the admin tool.
func (r *EventRepo) Purge(ctx context.Context, terminalID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recovery_events WHERE terminal_id = $1`, terminalID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge recovery events: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
