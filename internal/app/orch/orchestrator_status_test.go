package orch

import (
	"context"
	"testing"

	"github.com/dkeye/Support/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStatusUpdateReachesCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.SaveEntity(ctx, &domain.Entity{
		ID: "T", Type: domain.EntityTicket, Number: "TKT-1", Status: "open", CustomerID: "u1",
	}))
	_, custRec := f.connect("c1", customer("u1"))
	_, bystanderRec := f.connect("c2", customer("u2"))
	agent, _ := f.connect("c3", admin("a1"))

	ent, err := f.o.ApplyStatusUpdate(ctx, agent.Identity, domain.StatusUpdate{
		EntityID: "T", EntityType: domain.EntityTicket, Status: "resolved", Message: "Fixed",
	})
	require.NoError(t, err)
	assert.Equal(t, "resolved", ent.Status)

	stored, err := f.store.LoadEntity(ctx, "T", domain.EntityTicket)
	require.NoError(t, err)
	assert.Equal(t, "resolved", stored.Status)
	require.Len(t, stored.Responses, 1)
	assert.Equal(t, "Fixed", stored.Responses[0].Message)
	assert.Equal(t, "admin", stored.Responses[0].Sender)
	assert.Equal(t, testNow, stored.LastActivityAt)

	updates := custRec.ofType(t, EvTicketUpdated)
	require.Len(t, updates, 1)
	assert.Equal(t, "resolved", updates[0]["status"])
	assert.Equal(t, "Fixed", updates[0]["message"])
	assert.Equal(t, "T", updates[0]["entityId"])
	assert.Empty(t, bystanderRec.events(t))
}

func TestQueryStatusUpdateFindsCustomerByEmailAndRoom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.SaveEntity(ctx, &domain.Entity{
		ID: "Q", Type: domain.EntityQuery, Status: "open", CustomerEmail: "u1@shop.test", RoomID: "support_u1",
	}))
	cust, custRec := f.connect("c1", customer("u1"))
	agent, agentRec := f.connect("c2", admin("a1"))
	_, _ = f.o.JoinRoom(ctx, cust, "support_u1")
	_, _ = f.o.JoinRoom(ctx, agent, "support_u1")

	_, err := f.o.ApplyStatusUpdate(ctx, agent.Identity, domain.StatusUpdate{
		EntityID: "Q", EntityType: domain.EntityQuery, Status: "in_progress",
	})
	require.NoError(t, err)

	// member of the room and matched by email, still one event
	assert.Len(t, custRec.ofType(t, EvQueryUpdated), 1)
	assert.Len(t, agentRec.ofType(t, EvQueryUpdated), 1)

	stored, err := f.store.LoadEntity(ctx, "Q", domain.EntityQuery)
	require.NoError(t, err)
	assert.Empty(t, stored.Responses)
}

func TestStatusUpdateRejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cust, _ := f.connect("c1", customer("u1"))
	agent, _ := f.connect("c2", admin("a1"))

	_, err := f.o.ApplyStatusUpdate(ctx, cust.Identity, domain.StatusUpdate{EntityID: "T", EntityType: domain.EntityTicket, Status: "closed"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.o.ApplyStatusUpdate(ctx, agent.Identity, domain.StatusUpdate{EntityID: "T", EntityType: domain.EntityTicket, Status: "closed"})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	_, err = f.o.ApplyStatusUpdate(ctx, agent.Identity, domain.StatusUpdate{EntityID: "T", EntityType: "order", Status: "closed"})
	assert.ErrorIs(t, err, domain.ErrEntityTypeInvalid)
}
