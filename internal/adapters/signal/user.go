package signal

import (
	"context"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) requireIdentity(conn *WsSignalConn) (domain.Identity, bool) {
	if conn.identity == nil {
		ctl.sendError(conn, fmt.Errorf("%w: authenticate first", core.ErrUnauthorized))
		return domain.Identity{}, false
	}
	return *conn.identity, true
}

// authenticate attaches the identity behind token. A connection already in
// a room cannot switch to another user.
func (ctl *SignalWSController) authenticate(ctx context.Context, conn *WsSignalConn, token string) bool {
	id, err := ctl.Auth.ResolveIdentity(ctx, token)
	if err != nil {
		ctl.sendError(conn, err)
		return false
	}
	if conn.identity != nil && conn.identity.UserID != id.UserID {
		if _, inRoom := ctl.Relay.Registry.RoomOf(conn.id); inRoom {
			ctl.sendError(conn, fmt.Errorf("%w: leave the room before switching user", core.ErrBadRequest))
			return false
		}
	}
	conn.identity = &id
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("user", string(id.UserID)).Msg("authenticated")

	resp := struct {
		Type         string              `json:"type"`
		ConnectionID domain.ConnectionID `json:"connectionId"`
		domain.Identity
	}{core.EventAuthenticated, conn.id, id}
	ctl.sendJSON(conn, resp)
	return true
}

func (ctl *SignalWSController) handleAuth(ctx context.Context, conn *WsSignalConn, data []byte) {
	type authPayload struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var p authPayload
	if err := decode(data, &p); err != nil || p.Token == "" {
		ctl.sendError(conn, fmt.Errorf("%w: token is required", core.ErrUnauthorized))
		return
	}
	ctl.authenticate(ctx, conn, p.Token)
}

func (ctl *SignalWSController) handleWhoAmI(conn *WsSignalConn) {
	resp := struct {
		Type         string              `json:"type"`
		ConnectionID domain.ConnectionID `json:"connectionId"`
		UserID       domain.UserID       `json:"userId,omitempty"`
		DisplayName  string              `json:"displayName,omitempty"`
		RoomID       domain.RoomID       `json:"roomId,omitempty"`
	}{
		Type:         core.EventWhoAmI,
		ConnectionID: conn.id,
	}
	if conn.identity != nil {
		resp.UserID = conn.identity.UserID
		resp.DisplayName = conn.identity.DisplayName
	}
	if room, ok := ctl.Relay.Registry.RoomOf(conn.id); ok {
		resp.RoomID = room
	}
	ctl.sendJSON(conn, resp)
}
