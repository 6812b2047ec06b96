package app

import (
	"context"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Kick removes target from room on the owner's behalf. The kicked connection
// is told and stays open; everyone else sees a PeerLeft.
func (r *Relay) Kick(ctx context.Context, requester domain.UserID, room domain.RoomID, target domain.UserID) error {
	unlock := r.Locks.Lock(room)
	defer unlock()

	rec, err := r.Directory.Get(ctx, room)
	if err != nil {
		return err
	}
	if !rec.IsOwner(requester) {
		return fmt.Errorf("%w: only the room owner can remove participants", core.ErrForbidden)
	}
	if target == requester {
		return fmt.Errorf("%w: the owner cannot remove themselves", core.ErrBadRequest)
	}
	if err := r.Directory.RemoveParticipant(ctx, room, target); err != nil {
		return err
	}

	m, ok := r.Registry.FindByUser(room, target)
	if !ok {
		log.Info().Str("module", "app.relay").Str("room", string(room)).Str("user", string(target)).Msg("kicked user was not connected")
		return nil
	}
	r.Registry.Leave(room, m.ConnectionID)
	r.send(m.Endpoint, core.NewRoomEvent(core.EventYouWereKicked, room))
	r.broadcast(room, core.NewPeerLeft(m.PresenceEntry))
	log.Info().Str("module", "app.relay").Str("room", string(room)).Str("user", string(target)).Str("conn", string(m.ConnectionID)).Msg("participant kicked")
	return nil
}

// End deactivates room and tells each connection that was present.
func (r *Relay) End(ctx context.Context, requester domain.UserID, room domain.RoomID) error {
	unlock := r.Locks.Lock(room)
	defer unlock()

	rec, err := r.Directory.Get(ctx, room)
	if err != nil {
		return err
	}
	if !rec.IsOwner(requester) {
		return fmt.Errorf("%w: only the room owner can end the room", core.ErrForbidden)
	}
	if err := r.Directory.Deactivate(ctx, room); err != nil {
		return err
	}

	members := r.Registry.Clear(room)
	f, err := core.Encode(core.NewRoomEvent(core.EventRoomEnded, room))
	if err != nil {
		return err
	}
	for _, m := range members {
		r.sendFrame(m.Endpoint, f)
	}
	log.Info().Str("module", "app.relay").Str("room", string(room)).Int("notified", len(members)).Msg("room ended")
	return nil
}
