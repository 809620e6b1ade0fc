package domain

import (
	"time"
)

type RoomID string

const (
	RoomTypeSupport = "customer_support"

	KindText = "text"
)

// Room is the durable chat channel. MessageCount always equals len(Messages).
type Room struct {
	RoomID         RoomID        `json:"roomId" bson:"roomId"`
	RoomName       string        `json:"roomName" bson:"roomName"`
	RoomType       string        `json:"roomType" bson:"roomType"`
	Participants   []Participant `json:"participants" bson:"participants"`
	Messages       []Message     `json:"messages" bson:"messages"`
	LastMessageAt  time.Time     `json:"lastMessageAt,omitempty" bson:"lastMessageAt,omitempty"`
	LastActivityAt time.Time     `json:"lastActivityAt" bson:"lastActivityAt"`
	MessageCount   int           `json:"messageCount" bson:"messageCount"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
}

// Participant is a user's durable membership record in a room.
type Participant struct {
	UserID       UserID    `json:"userId" bson:"userId"`
	Role         Role      `json:"userType" bson:"userType"`
	DisplayName  string    `json:"userName" bson:"userName"`
	DisplayEmail string    `json:"userEmail" bson:"userEmail"`
	JoinedAt     time.Time `json:"joinedAt" bson:"joinedAt"`
	LastSeenAt   time.Time `json:"lastSeenAt" bson:"lastSeenAt"`
	Active       bool      `json:"isActive" bson:"isActive"`
}

type Attachment struct {
	URL      string `json:"url" bson:"url"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty" bson:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty" bson:"size,omitempty"`
}

type ReadReceipt struct {
	UserID UserID    `json:"userId" bson:"userId"`
	ReadAt time.Time `json:"readAt" bson:"readAt"`
}

// Message is immutable once appended, except for ReadBy which only grows.
type Message struct {
	MessageID   string        `json:"messageId" bson:"messageId"`
	RoomID      RoomID        `json:"roomId" bson:"roomId"`
	SenderID    UserID        `json:"senderId" bson:"senderId"`
	SenderName  string        `json:"senderName" bson:"senderName"`
	SenderRole  Role          `json:"senderType" bson:"senderType"`
	Body        string        `json:"message" bson:"message"`
	Kind        string        `json:"messageType" bson:"messageType"`
	Attachments []Attachment  `json:"attachments" bson:"attachments"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	ReadBy      []ReadReceipt `json:"readBy" bson:"readBy"`
}

// NewRoom creates a support room with the opener as its only participant.
func NewRoom(id RoomID, opener Identity, now time.Time) *Room {
	return &Room{
		RoomID:         id,
		RoomName:       "Support Chat - " + opener.DisplayName,
		RoomType:       RoomTypeSupport,
		Participants:   []Participant{newParticipant(opener, now)},
		Messages:       []Message{},
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

func newParticipant(who Identity, now time.Time) Participant {
	return Participant{
		UserID:       who.UserID,
		Role:         who.Role,
		DisplayName:  who.DisplayName,
		DisplayEmail: who.DisplayEmail,
		JoinedAt:     now,
		LastSeenAt:   now,
		Active:       true,
	}
}

// Participant returns the record for id, or nil.
func (r *Room) Participant(id UserID) *Participant {
	for i := range r.Participants {
		if r.Participants[i].UserID == id {
			return &r.Participants[i]
		}
	}
	return nil
}

// UpsertParticipant appends who, or only refreshes LastSeenAt of an existing
// record. It reports whether a new participant was added.
func (r *Room) UpsertParticipant(who Identity, now time.Time) bool {
	if p := r.Participant(who.UserID); p != nil {
		p.LastSeenAt = now
		return false
	}
	r.Participants = append(r.Participants, newParticipant(who, now))
	return true
}

// AppendMessage adds m to the log and keeps the counters in step.
func (r *Room) AppendMessage(m Message) {
	r.Messages = append(r.Messages, m)
	r.MessageCount = len(r.Messages)
	r.LastMessageAt = m.CreatedAt
	r.LastActivityAt = m.CreatedAt
}

// MarkRead records a receipt for user on every message it has not read yet
// and refreshes the participant's LastSeenAt. It returns how many messages
// gained a receipt.
func (r *Room) MarkRead(user UserID, now time.Time) int {
	marked := 0
	for i := range r.Messages {
		if r.Messages[i].ReadByUser(user) {
			continue
		}
		r.Messages[i].ReadBy = append(r.Messages[i].ReadBy, ReadReceipt{UserID: user, ReadAt: now})
		marked++
	}
	if p := r.Participant(user); p != nil {
		p.LastSeenAt = now
	}
	return marked
}

// History returns at most the last n messages, oldest first.
func (r *Room) History(n int) []Message {
	if n <= 0 || len(r.Messages) <= n {
		return append([]Message{}, r.Messages...)
	}
	return append([]Message{}, r.Messages[len(r.Messages)-n:]...)
}

// Clone returns a deep copy, so stores never share slices with callers.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Participants = append([]Participant{}, r.Participants...)
	out.Messages = make([]Message, len(r.Messages))
	for i, m := range r.Messages {
		m.Attachments = append([]Attachment{}, m.Attachments...)
		m.ReadBy = append([]ReadReceipt{}, m.ReadBy...)
		out.Messages[i] = m
	}
	return &out
}

func (m *Message) ReadByUser(user UserID) bool {
	for _, r := range m.ReadBy {
		if r.UserID == user {
			return true
		}
	}
	return false
}
