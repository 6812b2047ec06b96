package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join admits ep into room. A connection already in another room moves:
// the new room is checked first, and the old one is left only when the new
// one accepts. Durable writes precede presence changes, so a rejected join
// leaves everything as it was.
func (r *Relay) Join(ctx context.Context, ep core.Endpoint, who domain.Identity, room domain.RoomID, password string) error {
	cur, inRoom := r.Registry.RoomOf(ep.ID())
	if inRoom && cur != room {
		return r.move(ctx, ep, who, cur, room, password)
	}

	unlock := r.Locks.Lock(room)
	defer unlock()

	if _, ok := r.Registry.Find(room, ep.ID()); ok {
		r.send(ep, core.NewJoined(room, ep.ID(), r.peersExcept(room, ep.ID())))
		return nil
	}
	if _, err := r.admit(ctx, room, who.UserID, password); err != nil {
		return err
	}
	r.enter(ep, who, room)
	return nil
}

// Admit checks the password and records user as a durable participant
// without touching presence.
func (r *Relay) Admit(ctx context.Context, room domain.RoomID, user domain.UserID, password string) error {
	unlock := r.Locks.Lock(room)
	defer unlock()
	_, err := r.admit(ctx, room, user, password)
	return err
}

func (r *Relay) move(ctx context.Context, ep core.Endpoint, who domain.Identity, from, to domain.RoomID, password string) error {
	unlock := r.Locks.Lock(from, to)
	defer unlock()

	added, err := r.admit(ctx, to, who.UserID, password)
	if err != nil {
		return err
	}
	if _, err := r.leaveLocked(ctx, from, ep.ID(), false); err != nil {
		if added {
			if rbErr := r.Directory.RemoveParticipant(ctx, to, who.UserID); rbErr != nil {
				log.Error().Str("module", "app.relay").Str("room", string(to)).Str("user", string(who.UserID)).Err(rbErr).Msg("rollback of participant failed")
			}
		}
		return err
	}
	r.enter(ep, who, to)
	return nil
}

// admit verifies the room accepts user and makes user a durable participant.
// added reports whether the participant record is new. Callers hold the
// room lock.
func (r *Relay) admit(ctx context.Context, room domain.RoomID, user domain.UserID, password string) (added bool, err error) {
	rec, err := r.Directory.Get(ctx, room)
	if err != nil {
		return false, err
	}
	if !checkPassword(rec, password) {
		return false, fmt.Errorf("%w: wrong room password", core.ErrUnauthorized)
	}
	if rec.HasParticipant(user) {
		return false, nil
	}
	if err := r.Directory.AddParticipant(ctx, room, user); err != nil {
		return false, err
	}
	return true, nil
}

// enter commits presence for an admitted connection and fans out the
// departure of a superseded connection, the arrival, and the snapshot.
func (r *Relay) enter(ep core.Endpoint, who domain.Identity, room domain.RoomID) {
	self := Member{
		PresenceEntry: domain.PresenceEntry{
			ConnectionID: ep.ID(),
			RoomID:       room,
			UserID:       who.UserID,
			DisplayName:  who.DisplayName,
		},
		Endpoint: ep,
	}
	superseded, replaced := r.Registry.Join(self)
	if replaced {
		r.broadcast(room, core.NewPeerLeft(superseded.PresenceEntry), self.ConnectionID)
	}
	r.broadcast(room, core.NewPeerJoined(self.PresenceEntry), self.ConnectionID)
	r.send(ep, core.NewJoined(room, ep.ID(), r.peersExcept(room, ep.ID())))
}

// Leave is the explicit departure of conn from its current room and returns
// that room. A failed durable removal keeps presence untouched.
// Leaving when in no room is a no-op.
func (r *Relay) Leave(ctx context.Context, conn domain.ConnectionID) (domain.RoomID, error) {
	return r.leave(ctx, conn, false)
}

// Disconnect is the transport-loss departure. Presence is always removed;
// a durable failure is only logged.
func (r *Relay) Disconnect(ctx context.Context, conn domain.ConnectionID) {
	if room, err := r.leave(ctx, conn, true); room != "" {
		log.Info().Str("module", "app.relay").Str("conn", string(conn)).Str("room", string(room)).AnErr("durable", err).Msg("disconnected")
	}
}

func (r *Relay) leave(ctx context.Context, conn domain.ConnectionID, force bool) (domain.RoomID, error) {
	room, ok := r.Registry.RoomOf(conn)
	if !ok {
		return "", nil
	}

	unlock := r.Locks.Lock(room)
	defer unlock()
	return r.leaveLocked(ctx, room, conn, force)
}

// leaveLocked removes conn from room; the caller holds the room lock.
func (r *Relay) leaveLocked(ctx context.Context, room domain.RoomID, conn domain.ConnectionID, force bool) (domain.RoomID, error) {
	// a kick, end or supersede may have removed it while we waited
	m, ok := r.Registry.Find(room, conn)
	if !ok {
		return "", nil
	}

	err := r.Directory.RemoveParticipant(ctx, room, m.UserID)
	if errors.Is(err, core.ErrRoomNotFound) {
		err = nil
	}
	if err != nil {
		if !force {
			log.Warn().Str("module", "app.relay").Str("conn", string(conn)).Str("room", string(room)).Err(err).Msg("leave rejected")
			return "", err
		}
		log.Error().Str("module", "app.relay").Str("conn", string(conn)).Str("room", string(room)).Err(err).Msg("durable remove failed on disconnect")
	}

	r.Registry.Leave(room, conn)
	r.broadcast(room, core.NewPeerLeft(m.PresenceEntry))
	return room, err
}

func (r *Relay) peersExcept(room domain.RoomID, self domain.ConnectionID) []core.Peer {
	members := r.Registry.List(room)
	out := make([]core.Peer, 0, len(members))
	for _, m := range members {
		if m.ConnectionID == self {
			continue
		}
		out = append(out, core.PeerOf(m.PresenceEntry))
	}
	return out
}
