package postgres

import (
	"context"
	"fmt"

	"timelock-vault/internal/core/domain"
)

// EventRepo implements ports.EventRepository over the append-only
// vault_events table. Rows are never updated or deleted.
type EventRepo struct {
	pool Pool
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(pool Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// Append inserts a ledger event.
func (r *EventRepo) Append(ctx context.Context, ev domain.Event) error {
	query := `INSERT INTO vault_events (id, type, account_id, asset, amount, new_balance, start_time, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		ev.ID, string(ev.Type), ev.Account, ev.Asset, ev.Amount,
		ev.NewBalance, ev.StartTime, ev.Reason, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert vault event: %w", err)
	}
	return nil
}

// ListRecent fetches the most recent events, newest first.
func (r *EventRepo) ListRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	query := `SELECT id, type, account_id, asset, amount, new_balance, start_time, reason, occurred_at
		FROM vault_events ORDER BY occurred_at DESC, id LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list vault events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var (
			ev        domain.Event
			eventType string
		)
		if err := rows.Scan(
			&ev.ID, &eventType, &ev.Account, &ev.Asset, &ev.Amount,
			&ev.NewBalance, &ev.StartTime, &ev.Reason, &ev.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan vault event: %w", err)
		}
		ev.Type = domain.EventType(eventType)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault events: %w", err)
	}
	return events, nil
}
