package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
)

type sendMessagePayload struct {
	Type        string        `json:"type"`
	RoomID      domain.RoomID `json:"roomId"`
	Message     string        `json:"message"`
	MessageType string        `json:"messageType,omitempty"`
}

func (ctl *SignalWSController) handleSendMessage(
	ctx context.Context,
	sess *core.Connection,
	conn *WsSignalConn,
	data []byte,
) {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(conn, err, inSendMessage)
		return
	}
	if ctl.opts.Limiter != nil && !ctl.opts.Limiter.Allow(sess.UserID()) {
		log.Warn().Str("module", "signal").Str("user", string(sess.UserID())).Str("room", string(p.RoomID)).Msg("message rate limited")
		ctl.sendError(conn, domain.ErrRateLimited, "")
		return
	}
	if _, err := ctl.Orch.SendMessage(ctx, sess, p.RoomID, p.Message, p.MessageType); err != nil {
		ctl.sendError(conn, err, "Failed to send message")
	}
}

// Typing is fire-and-forget: nothing comes back except input errors.
func (ctl *SignalWSController) handleTyping(
	sess *core.Connection,
	conn *WsSignalConn,
	typ string,
	data []byte,
) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(conn, err, typ)
		return
	}
	var err error
	if typ == inTypingStart {
		err = ctl.Orch.TypingStart(sess, p.RoomID)
	} else {
		err = ctl.Orch.TypingStop(sess, p.RoomID)
	}
	if err != nil {
		ctl.sendError(conn, err, "Failed to relay typing")
	}
}

func (ctl *SignalWSController) handleMarkRead(
	ctx context.Context,
	sess *core.Connection,
	conn *WsSignalConn,
	data []byte,
) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(conn, err, inMarkMessagesRead)
		return
	}
	if _, err := ctl.Orch.MarkRead(ctx, sess, p.RoomID); err != nil {
		ctl.sendError(conn, err, "Failed to mark messages read")
	}
}
