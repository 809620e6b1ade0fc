package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

type JoinOutcome int

const (
	JoinRejected JoinOutcome = iota
	JoinCreated
	JoinJoined
)

func (o JoinOutcome) String() string {
	switch o {
	case JoinCreated:
		return "created"
	case JoinJoined:
		return "joined"
	default:
		return "rejected"
	}
}

type JoinResult struct {
	Outcome JoinOutcome
	// Reason is set when Outcome is JoinRejected.
	Reason error
	// Attached is false when the user was already a live member.
	Attached bool
	Room     *domain.Room
	History  []domain.Message
}

func rejected(err error) (JoinResult, error) {
	return JoinResult{Outcome: JoinRejected, Reason: err}, err
}

// JoinRoom loads or creates the room, records the participant, attaches the
// connection to the live membership and replies with recent history.
// Other members hear about the join once per actual attach.
func (o *Orchestrator) JoinRoom(ctx context.Context, conn *core.Connection, roomID domain.RoomID) (JoinResult, error) {
	if roomID == "" {
		return rejected(domain.ErrRoomIDRequired)
	}
	who := conn.Identity
	logger := log.With().Str("module", "orch.room").Str("room", string(roomID)).Str("user", string(who.UserID)).Logger()

	unlock := o.Locks.Lock(roomKey(roomID))
	defer unlock()

	now := o.Now()
	outcome := JoinJoined
	room, err := o.RoomStore.LoadRoom(ctx, roomID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		room = domain.NewRoom(roomID, who, now)
		outcome = JoinCreated
	case err != nil:
		logger.Error().Err(err).Msg("load room")
		return rejected(fmt.Errorf("load room %s: %w", roomID, err))
	default:
		room.UpsertParticipant(who, now)
	}
	if err := o.RoomStore.SaveRoom(ctx, room); err != nil {
		logger.Error().Err(err).Msg("save room")
		return rejected(fmt.Errorf("save room %s: %w", roomID, err))
	}

	attached := o.Rooms.Attach(roomID, who.UserID)
	history := room.History(o.HistoryLimit)

	o.sendTo(conn, RoomJoinedEvent{
		Type:         EvRoomJoined,
		RoomID:       room.RoomID,
		RoomName:     room.RoomName,
		RoomType:     room.RoomType,
		Participants: room.Participants,
		Messages:     history,
		MessageCount: room.MessageCount,
		Created:      outcome == JoinCreated,
	})
	if attached {
		o.BroadcastToRoom(roomID, presence(EvUserJoined, roomID, who, now), who.UserID)
	}
	if outcome == JoinCreated {
		o.notifyAdminFeed(RoomCreatedEvent{
			Type:      EvSupportRoomCreated,
			RoomID:    room.RoomID,
			RoomName:  room.RoomName,
			UserID:    who.UserID,
			UserName:  who.DisplayName,
			Timestamp: now,
		})
	}

	logger.Info().Stringer("outcome", outcome).Bool("attached", attached).Int("history", len(history)).Msg("joined room")
	return JoinResult{Outcome: outcome, Attached: attached, Room: room, History: history}, nil
}

// JoinAdminRoom subscribes a staff connection to admin notifications.
func (o *Orchestrator) JoinAdminRoom(conn *core.Connection) error {
	if !conn.Identity.Role.IsStaff() {
		log.Warn().Str("module", "orch.room").Str("user", string(conn.UserID())).Str("role", string(conn.Identity.Role)).Msg("non-staff tried to join admin room")
		return domain.ErrForbidden
	}
	conn.SubscribeAdminFeed()
	o.sendTo(conn, SimpleEvent{Type: EvAdminRoomJoined})
	log.Info().Str("module", "orch.room").Str("user", string(conn.UserID())).Msg("joined admin room")
	return nil
}

func (o *Orchestrator) notifyAdminFeed(v any) {
	frame := o.encode(v)
	if frame == nil {
		return
	}
	for _, c := range o.Registry.ListByRole(domain.RoleAdmin, domain.RoleSuperAdmin) {
		if c.AdminFeed() {
			o.Fanout.SendTo(c, frame)
		}
	}
}
