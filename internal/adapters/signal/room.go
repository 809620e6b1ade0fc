package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
)

type roomPayload struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sess *core.Connection,
	conn *WsSignalConn,
	data []byte,
) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(conn, err, inJoinSupportRoom)
		return
	}
	// room_joined and user_joined are emitted by the orchestrator.
	if _, err := ctl.Orch.JoinRoom(ctx, sess, p.RoomID); err != nil {
		ctl.sendError(conn, err, "Failed to join room")
	}
}

func (ctl *SignalWSController) handleJoinAdmin(sess *core.Connection, conn *WsSignalConn) {
	if err := ctl.Orch.JoinAdminRoom(sess); err != nil {
		ctl.sendError(conn, err, "Failed to join admin room")
	}
}
