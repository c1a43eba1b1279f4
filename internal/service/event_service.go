package service

import (
	"context"

	"timelock-vault/internal/core/domain"
	"timelock-vault/internal/core/ports"

	"github.com/rs/zerolog"
)

// EventFanout implements ports.EventSink. Every ledger event is appended to
// the postgres audit trail and pushed to the redis stream for external
// observers. Both writes are best-effort: the ledger tables are the source
// of truth and a sink failure never propagates to the vault operation that
// produced the event.
type EventFanout struct {
	repo      ports.EventRepository
	publisher ports.EventPublisher
	log       zerolog.Logger
}

// NewEventFanout creates a new EventFanout.
func NewEventFanout(repo ports.EventRepository, publisher ports.EventPublisher, log zerolog.Logger) *EventFanout {
	return &EventFanout{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Emit records and publishes the event.
func (s *EventFanout) Emit(ctx context.Context, ev domain.Event) {
	if err := s.repo.Append(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event_type", string(ev.Type)).
			Str("account", ev.Account.String()).
			Msg("failed to append ledger event")
	}

	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).
			Str("event_type", string(ev.Type)).
			Str("account", ev.Account.String()).
			Msg("failed to publish ledger event")
	}
}
