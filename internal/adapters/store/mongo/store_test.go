package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/Support/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIDFilter(t *testing.T) {
	hex := "64f0c0ffee0123456789abcd"
	oid, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)

	assert.Equal(t, bson.M{"_id": oid}, idFilter(hex))
	assert.Equal(t, bson.M{"_id": "TKT-0001"}, idFilter("TKT-0001"))
}

func TestEntityCollections(t *testing.T) {
	c, err := entityCollection(domain.EntityQuery)
	require.NoError(t, err)
	assert.Equal(t, queriesCollection, c)
	assert.Equal(t, "responses", logField(domain.EntityQuery))

	c, err = entityCollection(domain.EntityTicket)
	require.NoError(t, err)
	assert.Equal(t, ticketsCollection, c)
	assert.Equal(t, "messages", logField(domain.EntityTicket))

	_, err = entityCollection("order")
	assert.ErrorIs(t, err, domain.ErrEntityTypeInvalid)
}

func TestConnectRequiresURI(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	assert.Error(t, err)
}

func TestRoomDocumentShape(t *testing.T) {
	room := domain.NewRoom("support_u1", domain.NewGuest("c1"), testTime)
	room.AppendMessage(domain.Message{MessageID: "msg_1", Body: "Hello", SenderID: "guest_c1"})

	raw, err := bson.Marshal(room)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "support_u1", doc["roomId"])
	assert.EqualValues(t, 1, doc["messageCount"])

	var back domain.Room
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.Len(t, back.Messages, 1)
	assert.Equal(t, "Hello", back.Messages[0].Body)
}

var testTime = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func TestRoomUpdateSetsOwnedFieldsOnly(t *testing.T) {
	room := domain.NewRoom("support_u1", domain.NewGuest("c1"), testTime)
	upd := roomUpdate(room)

	set := upd["$set"].(bson.M)
	assert.NotContains(t, set, "roomId")
	assert.NotContains(t, set, "createdAt")
	assert.NotContains(t, set, "lastMessageAt")
	assert.Equal(t, room.Participants, set["participants"])
	assert.Equal(t, bson.M{"createdAt": testTime}, upd["$setOnInsert"])

	room.AppendMessage(domain.Message{MessageID: "msg_1", CreatedAt: testTime.Add(time.Minute)})
	set = roomUpdate(room)["$set"].(bson.M)
	assert.Equal(t, testTime.Add(time.Minute), set["lastMessageAt"])
	assert.Equal(t, 1, set["messageCount"])
}

func TestEntityUpdateSkipsMissingLog(t *testing.T) {
	e := &domain.Entity{ID: "Q", Type: domain.EntityQuery, Status: "closed", LastActivityAt: testTime}
	set := entityUpdate(e)["$set"].(bson.M)
	assert.Equal(t, bson.M{"status": "closed", "lastActivityAt": testTime}, set)

	e.Type = domain.EntityTicket
	e.Responses = []domain.Response{{Message: "Fixed", Sender: "admin"}}
	set = entityUpdate(e)["$set"].(bson.M)
	assert.Equal(t, e.Responses, set["messages"])
	assert.NotContains(t, set, "responses")
}
