package postgres

import (
	"context"
	"testing"
	"time"

	"timelock-vault/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEventRepo(mock)
	ev := domain.NewDeposited(uuid.New(), "GOLD", 100, 100, time.Now().UTC())

	mock.ExpectExec("INSERT INTO vault_events").
		WithArgs(ev.ID, string(ev.Type), ev.Account, ev.Asset, ev.Amount,
			ev.NewBalance, ev.StartTime, ev.Reason, ev.OccurredAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Append(context.Background(), ev)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEventRepo(mock)
	account := uuid.New()
	at := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{
		"id", "type", "account_id", "asset", "amount",
		"new_balance", "start_time", "reason", "occurred_at",
	}).
		AddRow(uuid.New(), "WITHDRAWN", account, "GOLD", int64(100), int64(0), time.Time{}, "", at).
		AddRow(uuid.New(), "DEPOSITED", account, "GOLD", int64(100), int64(100), time.Time{}, "", at.Add(-24*time.Hour))

	mock.ExpectQuery("SELECT .+ FROM vault_events ORDER BY occurred_at DESC").
		WithArgs(50).
		WillReturnRows(rows)

	events, err := repo.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventWithdrawn, events[0].Type)
	assert.Equal(t, domain.EventDeposited, events[1].Type)
	assert.Equal(t, account, events[0].Account)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListRecent_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEventRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM vault_events").
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "type", "account_id", "asset", "amount",
			"new_balance", "start_time", "reason", "occurred_at",
		}))

	events, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
