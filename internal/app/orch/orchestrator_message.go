package orch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

// SendMessage persists a message and fans it out to every live member,
// the sender included, then clears the sender's typing indicator.
// A failed save is reported to the caller and nothing is broadcast.
func (o *Orchestrator) SendMessage(ctx context.Context, conn *core.Connection, roomID domain.RoomID, body, kind string) (*domain.Message, error) {
	if roomID == "" || strings.TrimSpace(body) == "" {
		return nil, domain.ErrMessageRequired
	}
	if kind == "" {
		kind = domain.KindText
	}
	who := conn.Identity
	logger := log.With().Str("module", "orch.message").Str("room", string(roomID)).Str("user", string(who.UserID)).Logger()

	unlock := o.Locks.Lock(roomKey(roomID))
	defer unlock()

	room, err := o.RoomStore.LoadRoom(ctx, roomID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msg("load room")
		return nil, fmt.Errorf("load room %s: %w", roomID, err)
	}

	msg := domain.Message{
		MessageID:   o.NewMessageID(),
		RoomID:      roomID,
		SenderID:    who.UserID,
		SenderName:  who.DisplayName,
		SenderRole:  who.Role,
		Body:        body,
		Kind:        kind,
		Attachments: []domain.Attachment{},
		CreatedAt:   o.Now(),
		ReadBy:      []domain.ReadReceipt{},
	}
	room.AppendMessage(msg)
	if err := o.RoomStore.SaveRoom(ctx, room); err != nil {
		logger.Error().Err(err).Str("message", msg.MessageID).Msg("save room")
		return nil, fmt.Errorf("save room %s: %w", roomID, err)
	}

	ev := NewMessageEvent{Type: EvNewMessage, Message: msg}
	o.BroadcastToRoom(roomID, ev)
	if !o.Rooms.Contains(roomID, who.UserID) {
		o.sendTo(conn, ev)
	}
	o.BroadcastToRoom(roomID, TypingEvent{Type: EvTypingStop, RoomID: roomID, UserID: who.UserID, UserName: who.DisplayName}, who.UserID)

	logger.Info().Str("message", msg.MessageID).Int("count", room.MessageCount).Msg("message sent")
	return &msg, nil
}

// TypingStart relays a typing indicator to the other live members.
// Typing events are not stored and not ordered against messages.
func (o *Orchestrator) TypingStart(conn *core.Connection, roomID domain.RoomID) error {
	return o.typing(conn, roomID, EvTypingStart)
}

func (o *Orchestrator) TypingStop(conn *core.Connection, roomID domain.RoomID) error {
	return o.typing(conn, roomID, EvTypingStop)
}

func (o *Orchestrator) typing(conn *core.Connection, roomID domain.RoomID, typ string) error {
	if roomID == "" {
		return domain.ErrRoomIDRequired
	}
	who := conn.Identity
	o.BroadcastToRoom(roomID, TypingEvent{Type: typ, RoomID: roomID, UserID: who.UserID, UserName: who.DisplayName}, who.UserID)
	return nil
}

// MarkRead adds the user's receipt to every unread message, refreshes its
// participant record, saves once and tells the other members. Repeating it
// adds no receipts.
func (o *Orchestrator) MarkRead(ctx context.Context, conn *core.Connection, roomID domain.RoomID) (int, error) {
	if roomID == "" {
		return 0, domain.ErrRoomIDRequired
	}
	who := conn.Identity
	logger := log.With().Str("module", "orch.message").Str("room", string(roomID)).Str("user", string(who.UserID)).Logger()

	unlock := o.Locks.Lock(roomKey(roomID))
	defer unlock()

	room, err := o.RoomStore.LoadRoom(ctx, roomID)
	if errors.Is(err, core.ErrNotFound) {
		return 0, domain.ErrRoomNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msg("load room")
		return 0, fmt.Errorf("load room %s: %w", roomID, err)
	}

	now := o.Now()
	marked := room.MarkRead(who.UserID, now)
	if err := o.RoomStore.SaveRoom(ctx, room); err != nil {
		logger.Error().Err(err).Msg("save room")
		return 0, fmt.Errorf("save room %s: %w", roomID, err)
	}

	o.BroadcastToRoom(roomID, PresenceEvent{
		Type:      EvMessagesRead,
		RoomID:    roomID,
		UserID:    who.UserID,
		UserName:  who.DisplayName,
		Timestamp: now,
	}, who.UserID)

	logger.Debug().Int("marked", marked).Msg("messages read")
	return marked, nil
}
