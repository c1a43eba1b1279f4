package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStream_Publish(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	stream := NewEventStream(client)
	ctx := context.Background()

	ev := domain.NewDeposited(uuid.New(), "GOLD", 100, 100, time.Now().UTC())
	require.NoError(t, stream.Publish(ctx, ev))

	entries, err := client.XRange(ctx, eventStreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEPOSITED", entries[0].Values["type"])

	var decoded domain.Event
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, ev.Account, decoded.Account)
	assert.Equal(t, int64(100), decoded.Amount)
}

func TestEventStream_PreservesOrder(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	stream := NewEventStream(client)
	ctx := context.Background()

	account := uuid.New()
	at := time.Now().UTC()
	require.NoError(t, stream.Publish(ctx, domain.NewAccountCreated(account, at)))
	require.NoError(t, stream.Publish(ctx, domain.NewDeposited(account, "GOLD", 100, 100, at)))
	require.NoError(t, stream.Publish(ctx, domain.NewWithdrawn(account, "GOLD", 100, at.Add(time.Hour))))

	entries, err := client.XRange(ctx, eventStreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "ACCOUNT_CREATED", entries[0].Values["type"])
	assert.Equal(t, "DEPOSITED", entries[1].Values["type"])
	assert.Equal(t, "WITHDRAWN", entries[2].Values["type"])
}
