package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const pauseKey = "vault:paused"

// PauseStore implements ports.PauseSwitch on a single Redis key, so every
// instance behind the load balancer sees a pause the moment it is set.
// Absence of the key means the vault is running.
type PauseStore struct {
	client *goredis.Client
}

// NewPauseStore creates a new Redis-backed pause switch.
func NewPauseStore(client *goredis.Client) *PauseStore {
	return &PauseStore{client: client}
}

// IsPaused reports whether the kill switch is engaged.
func (s *PauseStore) IsPaused(ctx context.Context) (bool, error) {
	val, err := s.client.Get(ctx, pauseKey).Result()
	if err != nil {
		if err == goredis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis pause check: %w", err)
	}
	return val == "1", nil
}

// SetPaused engages or releases the kill switch. The key has no TTL: a
// pause survives until an operator explicitly lifts it.
func (s *PauseStore) SetPaused(ctx context.Context, paused bool) error {
	val := "0"
	if paused {
		val = "1"
	}
	if err := s.client.Set(ctx, pauseKey, val, 0).Err(); err != nil {
		return fmt.Errorf("redis pause set: %w", err)
	}
	return nil
}
