package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
)

type statusPayload struct {
	Type     string `json:"type"`
	QueryID  string `json:"queryId"`
	TicketID string `json:"ticketId"`
	Status   string `json:"status"`
	// Queries name the accompanying text "response", tickets "message".
	Response string `json:"response"`
	Message  string `json:"message"`
}

func (p statusPayload) update(typ string) domain.StatusUpdate {
	if typ == inQueryStatusUpdate {
		return domain.StatusUpdate{EntityID: p.QueryID, EntityType: domain.EntityQuery, Status: p.Status, Message: p.Response}
	}
	return domain.StatusUpdate{EntityID: p.TicketID, EntityType: domain.EntityTicket, Status: p.Status, Message: p.Message}
}

func (ctl *SignalWSController) handleStatusUpdate(
	ctx context.Context,
	sess *core.Connection,
	conn *WsSignalConn,
	typ string,
	data []byte,
) {
	var p statusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(conn, err, typ)
		return
	}
	if _, err := ctl.Orch.ApplyStatusUpdate(ctx, sess.Identity, p.update(typ)); err != nil {
		ctl.sendError(conn, err, "Failed to update status")
	}
}
