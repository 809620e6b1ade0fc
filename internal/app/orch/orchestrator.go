// Package orch coordinates connections, room membership and persistence.
// Every room's read-modify-write and the fan-out of its result run under
// that room's lock, so a room's events leave in the order they were stored.
package orch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Support/internal/app"
	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultHistoryLimit = 50

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.Membership
	Locks    *app.KeyedMutex
	Fanout   *app.Fanout
	Resolver app.IdentityResolver

	RoomStore   core.RoomStore
	EntityStore core.EntityStore

	HistoryLimit int
	Now          func() time.Time
	NewMessageID func() string
}

type Options struct {
	Verifier     core.CredentialVerifier
	Policy       app.Policy
	HistoryLimit int
}

func New(rooms core.RoomStore, entities core.EntityStore, opts Options) *Orchestrator {
	reg := app.NewRegistry()
	if opts.Policy == nil {
		opts.Policy = app.DropPolicy{}
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Orchestrator{
		Registry:     reg,
		Rooms:        app.NewMembership(),
		Locks:        app.NewKeyedMutex(),
		Fanout:       &app.Fanout{Registry: reg, Policy: opts.Policy},
		Resolver:     app.IdentityResolver{Verifier: opts.Verifier},
		RoomStore:    rooms,
		EntityStore:  entities,
		HistoryLimit: opts.HistoryLimit,
		Now:          func() time.Time { return time.Now().UTC() },
		NewMessageID: newMessageID,
	}
}

// newMessageID combines a time-ordered prefix with random bits (UUIDv7).
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "msg_" + uuid.NewString()
	}
	return "msg_" + id.String()
}

// Connect classifies the credential and registers the connection. It never
// rejects: invalid or missing credentials become guests. A connection the
// user already had is closed; its memberships carry over to the new one.
func (o *Orchestrator) Connect(_ context.Context, id core.ConnID, token string, sig core.SignalConnection) *core.Connection {
	ident, class := o.Resolver.Resolve(token, id)
	conn := core.NewConnection(id, ident, sig, o.Now())
	if prev := o.Registry.Register(conn); prev != nil {
		prev.MarkOffline()
		prev.Signal.Close()
		log.Info().Str("module", "orch").Str("conn", string(prev.ID)).Str("user", string(ident.UserID)).Msg("closed superseded connection")
	}
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("user", string(ident.UserID)).Str("role", string(ident.Role)).Stringer("identity", class).Msg("connected")
	return conn
}

func (o *Orchestrator) encode(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode event")
		return nil
	}
	return b
}

// BroadcastToRoom sends v to every live member of room except the listed users.
func (o *Orchestrator) BroadcastToRoom(room domain.RoomID, v any, except ...domain.UserID) app.PublishResult {
	frame := o.encode(v)
	if frame == nil {
		return app.PublishResult{}
	}
	targets := o.Rooms.Members(room)
	if len(except) > 0 {
		targets = without(targets, except)
	}
	return o.Fanout.Publish(targets, frame)
}

// BroadcastToUser sends v to the user's channel, if the user is online.
func (o *Orchestrator) BroadcastToUser(uid domain.UserID, v any) bool {
	conn, ok := o.Registry.Lookup(uid)
	if !ok {
		return false
	}
	return o.sendTo(conn, v)
}

// BroadcastToAdmins sends v to every online staff connection.
func (o *Orchestrator) BroadcastToAdmins(v any) int {
	frame := o.encode(v)
	if frame == nil {
		return 0
	}
	sent := 0
	for _, c := range o.Registry.ListByRole(domain.RoleAdmin, domain.RoleSuperAdmin) {
		if o.Fanout.SendTo(c, frame) {
			sent++
		}
	}
	return sent
}

func (o *Orchestrator) sendTo(conn *core.Connection, v any) bool {
	frame := o.encode(v)
	if frame == nil {
		return false
	}
	return o.Fanout.SendTo(conn, frame)
}

func without(ids []domain.UserID, drop []domain.UserID) []domain.UserID {
	out := ids[:0]
	for _, id := range ids {
		skip := false
		for _, d := range drop {
			if id == d {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, id)
		}
	}
	return out
}

func roomKey(id domain.RoomID) string { return "room:" + string(id) }

func entityKey(t domain.EntityType, id string) string { return "entity:" + string(t) + ":" + id }
