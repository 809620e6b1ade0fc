package orch

import (
	"time"

	"github.com/dkeye/Support/internal/domain"
)

// Outbound event types.
const (
	EvRoomJoined         = "room_joined"
	EvAdminRoomJoined    = "admin_room_joined"
	EvUserJoined         = "user_joined"
	EvUserLeft           = "user_left"
	EvNewMessage         = "new_message"
	EvTypingStart        = "typing_start"
	EvTypingStop         = "typing_stop"
	EvMessagesRead       = "messages_read"
	EvQueryUpdated       = "query_updated"
	EvTicketUpdated      = "ticket_updated"
	EvSupportRoomCreated = "support_room_created"
	EvPong               = "pong"
	EvError              = "error"
)

type RoomJoinedEvent struct {
	Type         string               `json:"type"`
	RoomID       domain.RoomID        `json:"roomId"`
	RoomName     string               `json:"roomName"`
	RoomType     string               `json:"roomType"`
	Participants []domain.Participant `json:"participants"`
	Messages     []domain.Message     `json:"messages"`
	MessageCount int                  `json:"messageCount"`
	Created      bool                 `json:"created"`
}

type PresenceEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"roomId"`
	UserID    domain.UserID `json:"userId"`
	UserName  string        `json:"userName"`
	UserType  domain.Role   `json:"userType,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

type TypingEvent struct {
	Type     string        `json:"type"`
	RoomID   domain.RoomID `json:"roomId"`
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
}

type NewMessageEvent struct {
	Type string `json:"type"`
	domain.Message
}

type EntityUpdatedEvent struct {
	Type         string            `json:"type"`
	EntityID     string            `json:"entityId"`
	EntityType   domain.EntityType `json:"entityType"`
	TicketNumber string            `json:"ticketNumber,omitempty"`
	Status       string            `json:"status"`
	Message      string            `json:"message,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

type RoomCreatedEvent struct {
	Type      string        `json:"type"`
	RoomID    domain.RoomID `json:"roomId"`
	RoomName  string        `json:"roomName"`
	UserID    domain.UserID `json:"userId"`
	UserName  string        `json:"userName"`
	Timestamp time.Time     `json:"timestamp"`
}

type SimpleEvent struct {
	Type string `json:"type"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func presence(typ string, room domain.RoomID, who domain.Identity, at time.Time) PresenceEvent {
	return PresenceEvent{
		Type:      typ,
		RoomID:    room,
		UserID:    who.UserID,
		UserName:  who.DisplayName,
		UserType:  who.Role,
		Timestamp: at,
	}
}

func entityUpdated(e *domain.Entity, msg string, at time.Time) EntityUpdatedEvent {
	typ := EvQueryUpdated
	if e.Type == domain.EntityTicket {
		typ = EvTicketUpdated
	}
	return EntityUpdatedEvent{
		Type:         typ,
		EntityID:     e.ID,
		EntityType:   e.Type,
		TicketNumber: e.Number,
		Status:       e.Status,
		Message:      msg,
		Timestamp:    at,
	}
}
