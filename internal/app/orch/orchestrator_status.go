package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

// ApplyStatusUpdate is the seam through which query and ticket state changes
// reach connected clients. It stores the new status (and the response, if
// one is given) and notifies the entity's room and its customer, each user
// at most once.
func (o *Orchestrator) ApplyStatusUpdate(ctx context.Context, actor domain.Identity, upd domain.StatusUpdate) (*domain.Entity, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}
	logger := log.With().Str("module", "orch.status").Str("entity", upd.EntityID).Str("type", string(upd.EntityType)).Str("actor", string(actor.UserID)).Logger()

	unlock := o.Locks.Lock(entityKey(upd.EntityType, upd.EntityID))
	defer unlock()

	ent, err := o.EntityStore.LoadEntity(ctx, upd.EntityID, upd.EntityType)
	if errors.Is(err, core.ErrNotFound) {
		return nil, domain.ErrEntityNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msg("load entity")
		return nil, fmt.Errorf("load %s %s: %w", upd.EntityType, upd.EntityID, err)
	}

	now := o.Now()
	ent.Apply(upd, actor, now)
	if err := o.EntityStore.SaveEntity(ctx, ent); err != nil {
		logger.Error().Err(err).Msg("save entity")
		return nil, fmt.Errorf("save %s %s: %w", upd.EntityType, upd.EntityID, err)
	}

	frame := o.encode(entityUpdated(ent, upd.Message, now))
	if frame != nil {
		o.Fanout.Publish(o.entityAudience(ent), frame)
	}

	logger.Info().Str("status", ent.Status).Msg("status updated")
	return ent, nil
}

func (o *Orchestrator) entityAudience(ent *domain.Entity) []domain.UserID {
	seen := make(map[domain.UserID]struct{})
	var out []domain.UserID
	add := func(uid domain.UserID) {
		if _, ok := seen[uid]; ok || uid == "" {
			return
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}
	if ent.RoomID != "" {
		for _, uid := range o.Rooms.Members(ent.RoomID) {
			add(uid)
		}
	}
	if ent.CustomerID != "" {
		add(ent.CustomerID)
	} else if c, ok := o.Registry.FindByEmail(ent.CustomerEmail); ok {
		add(c.UserID())
	}
	return out
}
