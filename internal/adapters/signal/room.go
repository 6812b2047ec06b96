package signal

import (
	"context"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(ctx context.Context, conn *WsSignalConn, data []byte) {
	who, ok := ctl.requireIdentity(conn)
	if !ok {
		return
	}
	type joinPayload struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId"`
		Password string `json:"password,omitempty"`
	}
	var p joinPayload
	if err := decode(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(conn, fmt.Errorf("%w: roomId is required", core.ErrBadRequest))
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(who.UserID) {
		ctl.sendError(conn, fmt.Errorf("%w: too many join attempts", core.ErrRateLimited))
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("room", p.RoomID).Msg("join")
	if err := ctl.Relay.Join(ctx, conn, who, domain.RoomID(p.RoomID), p.Password); err != nil {
		ctl.sendError(conn, err)
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(ctx context.Context, conn *WsSignalConn) {
	if _, ok := ctl.requireIdentity(conn); !ok {
		return
	}
	room, err := ctl.Relay.Leave(ctx, conn.id)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("room", string(room)).Msg("leave")
	ctl.sendJSON(conn, core.NewRoomEvent(core.EventLeft, room))
}

type roomTarget struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// targetRoom is the explicit roomId if given, else the connection's room.
func (ctl *SignalWSController) targetRoom(conn *WsSignalConn, p roomTarget) (domain.RoomID, error) {
	if p.RoomID != "" {
		return domain.RoomID(p.RoomID), nil
	}
	room, ok := ctl.Relay.Registry.RoomOf(conn.id)
	if !ok {
		return "", fmt.Errorf("%w: not in a room", core.ErrRoomNotFound)
	}
	return room, nil
}

func (ctl *SignalWSController) handleKick(ctx context.Context, conn *WsSignalConn, data []byte) {
	who, ok := ctl.requireIdentity(conn)
	if !ok {
		return
	}
	var p roomTarget
	if err := decode(data, &p); err != nil || p.UserID == "" {
		ctl.sendError(conn, fmt.Errorf("%w: userId is required", core.ErrBadRequest))
		return
	}
	room, err := ctl.targetRoom(conn, p)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}
	if err := ctl.Relay.Kick(ctx, who.UserID, room, domain.UserID(p.UserID)); err != nil {
		ctl.sendError(conn, err)
	}
}

func (ctl *SignalWSController) handleEndRoom(ctx context.Context, conn *WsSignalConn, data []byte) {
	who, ok := ctl.requireIdentity(conn)
	if !ok {
		return
	}
	var p roomTarget
	if err := decode(data, &p); err != nil {
		ctl.sendError(conn, err)
		return
	}
	room, err := ctl.targetRoom(conn, p)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}
	if err := ctl.Relay.End(ctx, who.UserID, room); err != nil {
		ctl.sendError(conn, err)
	}
}

func (ctl *SignalWSController) handleRoomUsers(ctx context.Context, conn *WsSignalConn, data []byte) {
	if _, ok := ctl.requireIdentity(conn); !ok {
		return
	}
	var p roomTarget
	if err := decode(data, &p); err != nil {
		ctl.sendError(conn, err)
		return
	}
	room, err := ctl.targetRoom(conn, p)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}
	roster, err := ctl.Relay.Roster(ctx, room)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}
	ctl.sendJSON(conn, roster)
}
