package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Support/internal/app/orch"
	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Inbound event types.
const (
	inJoinAdminRoom      = "join_admin_room"
	inJoinSupportRoom    = "join_support_room"
	inSendMessage        = "send_message"
	inTypingStart        = "typing_start"
	inTypingStop         = "typing_stop"
	inMarkMessagesRead   = "mark_messages_read"
	inQueryStatusUpdate  = "query_status_update"
	inTicketStatusUpdate = "ticket_status_update"
	inPing               = "ping"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(ctl.opts.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

// readPump owns the connection's lifetime: when it returns the connection
// is closed and reconciled.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sess *core.Connection, c *WsSignalConn) {
	uid := sess.UserID()
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sess.ID)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.Disconnect(sess)
		if _, online := ctl.Orch.Registry.Lookup(uid); !online && ctl.opts.Limiter != nil {
			ctl.opts.Limiter.Forget(uid)
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(sess.ID)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(ctx, sess, c, data)
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sess *core.Connection, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sess.ID)).Msg("bad json")
		ctl.sendJSON(c, orch.ErrorEvent{Type: orch.EvError, Message: "bad_payload"})
		return
	}

	switch env.Type {
	case inJoinAdminRoom:
		ctl.handleJoinAdmin(sess, c)
	case inJoinSupportRoom:
		ctl.handleJoin(ctx, sess, c, data)
	case inSendMessage:
		ctl.handleSendMessage(ctx, sess, c, data)
	case inTypingStart, inTypingStop:
		ctl.handleTyping(sess, c, env.Type, data)
	case inMarkMessagesRead:
		ctl.handleMarkRead(ctx, sess, c, data)
	case inQueryStatusUpdate, inTicketStatusUpdate:
		ctl.handleStatusUpdate(ctx, sess, c, env.Type, data)
	case inPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendJSON(c, orch.ErrorEvent{Type: orch.EvError, Message: "unknown_event"})
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// sendError reports err to the originating connection only. Client errors
// carry their own text; anything else is hidden behind fallback.
func (ctl *SignalWSController) sendError(c *WsSignalConn, err error, fallback string) {
	msg := fallback
	if domain.IsClientError(err) {
		msg = err.Error()
	}
	ctl.sendJSON(c, orch.ErrorEvent{Type: orch.EvError, Message: msg})
}

func (ctl *SignalWSController) badPayload(c *WsSignalConn, err error, event string) {
	log.Warn().Err(err).Str("module", "signal").Str("type", event).Msg("bad payload")
	ctl.sendJSON(c, orch.ErrorEvent{Type: orch.EvError, Message: "bad_payload"})
}
