package app

import (
	"sync"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps each user to its live connection. A user holds at most one
// entry: a newer connection supersedes the previous one.
type Registry struct {
	mu    sync.RWMutex
	users map[domain.UserID]*core.Connection
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[domain.UserID]*core.Connection)}
}

// Register stores conn under its user and returns the connection it
// superseded, if any.
func (r *Registry) Register(conn *core.Connection) *core.Connection {
	uid := conn.UserID()
	r.mu.Lock()
	prev := r.users[uid]
	r.users[uid] = conn
	r.mu.Unlock()

	ev := log.Info().Str("module", "app.registry").Str("conn", string(conn.ID)).Str("user", string(uid)).Str("role", string(conn.Identity.Role))
	if prev != nil && prev != conn {
		ev = ev.Str("superseded", string(prev.ID))
	} else {
		prev = nil
	}
	ev.Msg("registered connection")
	return prev
}

// Unregister drops the user's entry. No-op if absent.
func (r *Registry) Unregister(uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.users[uid]; ok {
		c.MarkOffline()
		delete(r.users, uid)
		log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("unregistered user")
	}
}

// Release drops the user's entry only while it still belongs to connID.
// A superseded connection releasing late must not evict its successor.
func (r *Registry) Release(uid domain.UserID, connID core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.users[uid]
	if !ok || c.ID != connID {
		return false
	}
	c.MarkOffline()
	delete(r.users, uid)
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(connID)).Msg("released connection")
	return true
}

func (r *Registry) Lookup(uid domain.UserID) (*core.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.users[uid]
	return c, ok
}

// FindByEmail scans for a connection whose identity carries email.
func (r *Registry) FindByEmail(email string) (*core.Connection, bool) {
	if email == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.users {
		if c.Identity.DisplayEmail == email {
			return c, true
		}
	}
	return nil, false
}

// ListByRole returns every connection whose role is one of roles.
func (r *Registry) ListByRole(roles ...domain.Role) []*core.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Connection, 0)
	for _, c := range r.users {
		for _, role := range roles {
			if c.Identity.Role == role {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (r *Registry) List() []core.ConnectionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ConnectionInfo, 0, len(r.users))
	for _, c := range r.users {
		out = append(out, c.Info())
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
