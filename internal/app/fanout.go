package app

import (
	"errors"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

// PublishResult reports delivery stats of one fan-out.
type PublishResult struct {
	SentTo  int
	Dropped []domain.UserID
}

// Fanout delivers frames to users through their registered connections.
// Sends never block; a failing recipient never fails the publish.
type Fanout struct {
	Registry *Registry
	Policy   Policy
}

func (f *Fanout) Publish(targets []domain.UserID, frame core.Frame) PublishResult {
	res := PublishResult{}
	for _, uid := range targets {
		conn, ok := f.Registry.Lookup(uid)
		if !ok {
			continue
		}
		if f.SendTo(conn, frame) {
			res.SentTo++
		} else {
			res.Dropped = append(res.Dropped, uid)
		}
	}
	log.Debug().Str("module", "app.fanout").Int("targets", len(targets)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("publish result")
	return res
}

// SendTo delivers to a single connection and applies the backpressure policy
// on failure.
func (f *Fanout) SendTo(conn *core.Connection, frame core.Frame) bool {
	err := conn.Signal.TrySend(frame)
	if err == nil {
		return true
	}
	log.Debug().Err(err).Str("module", "app.fanout").Str("conn", string(conn.ID)).Str("user", string(conn.UserID())).Msg("send dropped")
	if !errors.Is(err, core.ErrBackpressure) || f.Policy == nil {
		return false
	}
	switch f.Policy.OnBackPressure(conn) {
	case KickMember:
		log.Warn().Str("module", "app.fanout").Str("conn", string(conn.ID)).Msg("kicking slow connection")
		conn.Signal.Close()
	case DropEvent:
	}
	return false
}
