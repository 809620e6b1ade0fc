package signal

import "github.com/dkeye/Support/internal/app/orch"

func (ctl *SignalWSController) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, orch.SimpleEvent{Type: orch.EvPong})
}
