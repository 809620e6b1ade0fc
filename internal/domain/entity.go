package domain

import (
	"strings"
	"time"
)

type EntityType string

const (
	EntityQuery  EntityType = "query"
	EntityTicket EntityType = "ticket"
)

func (t EntityType) Valid() bool {
	return t == EntityQuery || t == EntityTicket
}

// Entity is a support query or ticket. Its Responses log is separate from
// any chat room transcript.
type Entity struct {
	ID             string     `json:"id"`
	Type           EntityType `json:"type"`
	Number         string     `json:"ticketNumber,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	CustomerID     UserID     `json:"customerId,omitempty"`
	CustomerEmail  string     `json:"customerEmail,omitempty"`
	RoomID         RoomID     `json:"roomId,omitempty"`
	Responses      []Response `json:"responses"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
}

type Response struct {
	Message     string    `json:"message" bson:"message"`
	Sender      string    `json:"sender" bson:"sender"`
	SenderName  string    `json:"senderName" bson:"senderName"`
	SenderEmail string    `json:"senderEmail" bson:"senderEmail"`
	Internal    bool      `json:"isInternal" bson:"isInternal"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// StatusUpdate is a state transition requested from outside the chat flow.
type StatusUpdate struct {
	EntityID   string     `json:"entityId"`
	EntityType EntityType `json:"entityType"`
	Status     string     `json:"status"`
	Message    string     `json:"message,omitempty"`
}

func (u StatusUpdate) Validate() error {
	switch {
	case strings.TrimSpace(u.EntityID) == "":
		return ErrEntityIDRequired
	case !u.EntityType.Valid():
		return ErrEntityTypeInvalid
	case strings.TrimSpace(u.Status) == "":
		return ErrStatusRequired
	}
	return nil
}

// Apply moves the entity to the new status and records the accompanying
// message, if any, as a staff response.
func (e *Entity) Apply(u StatusUpdate, actor Identity, now time.Time) {
	e.Status = u.Status
	e.LastActivityAt = now
	if u.Message == "" {
		return
	}
	e.Responses = append(e.Responses, Response{
		Message:     u.Message,
		Sender:      string(RoleAdmin),
		SenderName:  actor.DisplayName,
		SenderEmail: actor.DisplayEmail,
		CreatedAt:   now,
	})
}

func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	out.Responses = append([]Response{}, e.Responses...)
	return &out
}
