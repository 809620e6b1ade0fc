package app

import (
	"sort"
	"sync"

	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

type RoomInfo struct {
	RoomID      domain.RoomID `json:"roomId"`
	MemberCount int           `json:"client_count"`
}

// Membership is the in-memory index of users attached to each room through
// a live connection. It is a cache: safe to drop and rebuild on restart.
type Membership struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.UserID]struct{}
}

func NewMembership() *Membership {
	return &Membership{rooms: make(map[domain.RoomID]map[domain.UserID]struct{})}
}

// Attach adds uid to the room. It reports false if uid was already attached.
func (m *Membership) Attach(room domain.RoomID, uid domain.UserID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.rooms[room]
	if !ok {
		set = make(map[domain.UserID]struct{})
		m.rooms[room] = set
	}
	if _, ok := set[uid]; ok {
		return false
	}
	set[uid] = struct{}{}
	log.Debug().Str("module", "app.membership").Str("room", string(room)).Str("user", string(uid)).Msg("attached")
	return true
}

// Detach removes uid from the room and drops the room once empty.
func (m *Membership) Detach(room domain.RoomID, uid domain.UserID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detachLocked(room, uid)
}

// DetachAll removes uid from every room it occupied and returns those rooms.
func (m *Membership) DetachAll(uid domain.UserID) []domain.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var left []domain.RoomID
	for room := range m.rooms {
		if m.detachLocked(room, uid) {
			left = append(left, room)
		}
	}
	sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
	return left
}

func (m *Membership) detachLocked(room domain.RoomID, uid domain.UserID) bool {
	set, ok := m.rooms[room]
	if !ok {
		return false
	}
	if _, ok := set[uid]; !ok {
		return false
	}
	delete(set, uid)
	if len(set) == 0 {
		delete(m.rooms, room)
		log.Debug().Str("module", "app.membership").Str("room", string(room)).Msg("room vacated")
	}
	return true
}

// Members returns a snapshot of the users attached to room.
func (m *Membership) Members(room domain.RoomID) []domain.UserID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.rooms[room]
	out := make([]domain.UserID, 0, len(set))
	for uid := range set {
		out = append(out, uid)
	}
	return out
}

func (m *Membership) Contains(room domain.RoomID, uid domain.UserID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[room][uid]
	return ok
}

func (m *Membership) Rooms() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, set := range m.rooms {
		out = append(out, RoomInfo{RoomID: id, MemberCount: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}
