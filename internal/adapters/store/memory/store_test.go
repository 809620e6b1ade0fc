package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRoundTripIsolatesCallers(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.LoadRoom(ctx, "r")
	assert.ErrorIs(t, err, core.ErrNotFound)

	room := domain.NewRoom("r", domain.NewGuest("c1"), time.Now())
	require.NoError(t, s.SaveRoom(ctx, room))

	room.AppendMessage(domain.Message{MessageID: "unsaved"})
	got, err := s.LoadRoom(ctx, "r")
	require.NoError(t, err)
	assert.Empty(t, got.Messages)

	got.AppendMessage(domain.Message{MessageID: "m1"})
	again, err := s.LoadRoom(ctx, "r")
	require.NoError(t, err)
	assert.Empty(t, again.Messages)
}

func TestEntitiesAreKeyedByType(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.SaveEntity(ctx, &domain.Entity{ID: "1", Type: domain.EntityQuery, Status: "open"}))

	_, err := s.LoadEntity(ctx, "1", domain.EntityTicket)
	assert.ErrorIs(t, err, core.ErrNotFound)

	e, err := s.LoadEntity(ctx, "1", domain.EntityQuery)
	require.NoError(t, err)
	assert.Equal(t, "open", e.Status)
}
