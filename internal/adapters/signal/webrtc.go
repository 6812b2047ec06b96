package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// handleRelay forwards an offer, answer or ICE candidate to one peer in the
// sender's room. The payload is passed through untouched.
func (ctl *SignalWSController) handleRelay(conn *WsSignalConn, data []byte) {
	if _, ok := ctl.requireIdentity(conn); !ok {
		return
	}
	type signalPayload struct {
		Type    string          `json:"type"`
		Target  string          `json:"target"`
		Payload json.RawMessage `json:"payload"`
	}
	var p signalPayload
	if err := decode(data, &p); err != nil || p.Target == "" {
		ctl.sendError(conn, fmt.Errorf("%w: target is required", core.ErrBadRequest))
		return
	}
	if len(p.Payload) == 0 {
		p.Payload = json.RawMessage("null")
	}
	err := ctl.Relay.Signal(conn, domain.ConnectionID(p.Target), p.Payload)
	if err != nil && !errors.Is(err, core.ErrPeerUnreachable) {
		ctl.sendError(conn, err)
	}
}
