package orch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastToUserAndAdmins(t *testing.T) {
	f := newFixture()
	_, custRec := f.connect("c1", customer("u1"))
	_, a1Rec := f.connect("c2", admin("a1"))
	_, a2Rec := f.connect("c3", admin("a2"))

	assert.True(t, f.o.BroadcastToUser("u1", SimpleEvent{Type: "notice"}))
	assert.False(t, f.o.BroadcastToUser("offline", SimpleEvent{Type: "notice"}))
	assert.Len(t, custRec.ofType(t, "notice"), 1)

	assert.Equal(t, 2, f.o.BroadcastToAdmins(SimpleEvent{Type: "maintenance"}))
	assert.Len(t, a1Rec.ofType(t, "maintenance"), 1)
	assert.Len(t, a2Rec.ofType(t, "maintenance"), 1)
	assert.Empty(t, custRec.ofType(t, "maintenance"))
}

func TestBroadcastToRoomExcludes(t *testing.T) {
	f := newFixture()
	_, r1 := f.connect("c1", customer("u1"))
	_, r2 := f.connect("c2", admin("a1"))
	f.o.Rooms.Attach("r", "u1")
	f.o.Rooms.Attach("r", "a1")

	res := f.o.BroadcastToRoom("r", SimpleEvent{Type: "x"}, "u1")
	assert.Equal(t, 1, res.SentTo)
	assert.Empty(t, r1.events(t))
	assert.Len(t, r2.events(t), 1)
}

func TestMessageIDsAreUniqueAndPrefixed(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := newMessageID()
		assert.True(t, strings.HasPrefix(id, "msg_"))
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}
