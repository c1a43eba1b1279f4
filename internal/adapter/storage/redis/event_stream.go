package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"timelock-vault/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const (
	eventStreamKey    = "vault:events"
	eventStreamMaxLen = 10000
)

// EventStream implements ports.EventPublisher on a capped Redis stream.
// The postgres event table is the durable record; the stream only feeds
// live subscribers, so old entries are trimmed.
type EventStream struct {
	client *goredis.Client
}

// NewEventStream creates a new Redis stream publisher.
func NewEventStream(client *goredis.Client) *EventStream {
	return &EventStream{client: client}
}

// Publish appends the event to the stream as a single JSON payload.
func (s *EventStream) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal vault event: %w", err)
	}

	err = s.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: eventStreamKey,
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"type":    string(ev.Type),
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis event publish: %w", err)
	}
	return nil
}
