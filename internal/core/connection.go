package core

import (
	"sync/atomic"
	"time"

	"github.com/dkeye/Support/internal/domain"
)

// Connection binds a classified identity to its transport endpoint.
// It never outlives the transport: the adapter disconnects it on close.
type Connection struct {
	ID          ConnID
	Identity    domain.Identity
	Signal      SignalConnection
	ConnectedAt time.Time

	online    atomic.Bool
	adminFeed atomic.Bool
}

func NewConnection(id ConnID, ident domain.Identity, sig SignalConnection, now time.Time) *Connection {
	c := &Connection{ID: id, Identity: ident, Signal: sig, ConnectedAt: now}
	c.online.Store(true)
	return c
}

func (c *Connection) UserID() domain.UserID { return c.Identity.UserID }
func (c *Connection) Online() bool          { return c.online.Load() }
func (c *Connection) MarkOffline()          { c.online.Store(false) }

// SubscribeAdminFeed opts a staff connection into admin notifications.
func (c *Connection) SubscribeAdminFeed() {
	c.adminFeed.Store(true)
}

func (c *Connection) AdminFeed() bool {
	return c.adminFeed.Load()
}

// ConnectionInfo is a read-only view for APIs (no transport fields).
type ConnectionInfo struct {
	ConnID      ConnID        `json:"connId"`
	UserID      domain.UserID `json:"userId"`
	Role        domain.Role   `json:"userType"`
	UserName    string        `json:"userName"`
	UserEmail   string        `json:"userEmail"`
	ConnectedAt time.Time     `json:"connectedAt"`
	Online      bool          `json:"isOnline"`
}

func (c *Connection) Info() ConnectionInfo {
	return ConnectionInfo{
		ConnID:      c.ID,
		UserID:      c.Identity.UserID,
		Role:        c.Identity.Role,
		UserName:    c.Identity.DisplayName,
		UserEmail:   c.Identity.DisplayEmail,
		ConnectedAt: c.ConnectedAt,
		Online:      c.Online(),
	}
}
