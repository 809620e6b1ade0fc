// Package natsbus feeds status updates published by other services into the
// gateway's status bridge.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Support/internal/domain"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// StatusApplier is the part of the orchestrator this subscriber drives.
type StatusApplier interface {
	ApplyStatusUpdate(ctx context.Context, actor domain.Identity, upd domain.StatusUpdate) (*domain.Entity, error)
}

type Config struct {
	URL     string
	Subject string
	Queue   string
}

type reply struct {
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StatusSubscriber applies every StatusUpdate received on its subject as the
// system identity. Requests carrying a reply subject get the outcome back.
type StatusSubscriber struct {
	cfg     Config
	applier StatusApplier
	nc      *nats.Conn
	sub     *nats.Subscription
}

func NewStatusSubscriber(cfg Config, applier StatusApplier) *StatusSubscriber {
	return &StatusSubscriber{cfg: cfg, applier: applier}
}

// Run connects, subscribes and blocks until ctx is done.
func (s *StatusSubscriber) Run(ctx context.Context) error {
	nc, err := nats.Connect(s.cfg.URL, nats.Name("support-gateway"), nats.MaxReconnects(-1))
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	s.nc = nc
	defer nc.Close()

	cb := func(m *nats.Msg) { s.handle(ctx, m) }
	if s.cfg.Queue == "" {
		s.sub, err = nc.Subscribe(s.cfg.Subject, cb)
	} else {
		s.sub, err = nc.QueueSubscribe(s.cfg.Subject, s.cfg.Queue, cb)
	}
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cfg.Subject, err)
	}
	log.Info().Str("module", "natsbus").Str("subject", s.cfg.Subject).Str("queue", s.cfg.Queue).Msg("status subscriber started")

	<-ctx.Done()
	if err := s.sub.Drain(); err != nil {
		log.Warn().Err(err).Str("module", "natsbus").Msg("drain subscription")
	}
	log.Info().Str("module", "natsbus").Msg("status subscriber stopped")
	return nil
}

func (s *StatusSubscriber) handle(ctx context.Context, m *nats.Msg) {
	out := s.apply(ctx, m.Data)
	if m.Reply == "" {
		return
	}
	b, err := json.Marshal(out)
	if err != nil {
		log.Error().Err(err).Str("module", "natsbus").Msg("marshal reply")
		return
	}
	if err := m.Respond(b); err != nil {
		log.Warn().Err(err).Str("module", "natsbus").Msg("respond")
	}
}

func (s *StatusSubscriber) apply(ctx context.Context, data []byte) reply {
	var upd domain.StatusUpdate
	if err := json.Unmarshal(data, &upd); err != nil {
		log.Warn().Err(err).Str("module", "natsbus").Msg("bad status payload")
		return reply{Error: "bad_payload"}
	}
	ent, err := s.applier.ApplyStatusUpdate(ctx, domain.SystemIdentity(), upd)
	if err != nil {
		log.Warn().Err(err).Str("module", "natsbus").Str("entity", upd.EntityID).Msg("status update failed")
		return reply{Error: err.Error()}
	}
	return reply{OK: true, Status: ent.Status}
}
