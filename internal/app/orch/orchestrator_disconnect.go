package orch

import (
	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

// Disconnect reconciles a lost connection: it leaves the registry and every
// room the user occupied, and each of those rooms hears exactly one
// user_left. A connection superseded by a newer one that is still
// registered changes nothing, since the successor holds the memberships.
func (o *Orchestrator) Disconnect(conn *core.Connection) []domain.RoomID {
	who := conn.Identity
	if !o.Registry.Release(who.UserID, conn.ID) {
		conn.MarkOffline()
		if _, ok := o.Registry.Lookup(who.UserID); ok {
			log.Info().Str("module", "orch.disconnect").Str("conn", string(conn.ID)).Str("user", string(who.UserID)).Msg("superseded connection closed")
			return nil
		}
		// the successor is gone too; whatever this connection attached since
		// must not linger in the index
	}

	left := o.Rooms.DetachAll(who.UserID)
	now := o.Now()
	for _, room := range left {
		unlock := o.Locks.Lock(roomKey(room))
		o.BroadcastToRoom(room, presence(EvUserLeft, room, who, now))
		unlock()
	}
	log.Info().Str("module", "orch.disconnect").Str("conn", string(conn.ID)).Str("user", string(who.UserID)).Int("rooms", len(left)).Msg("disconnected")
	return left
}
