package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Relay applies membership transitions and forwards negotiation messages.
// Join, leave, kick and end on a room run under that room's transition lock;
// Signal only reads presence and never waits on durable I/O.
type Relay struct {
	Registry  *Registry
	Directory *Directory
	Locks     *RoomLocks
	Policy    Policy
}

func NewRelay(reg *Registry, dir *Directory, policy Policy) *Relay {
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Relay{Registry: reg, Directory: dir, Locks: NewRoomLocks(), Policy: policy}
}

// Signal forwards payload from the sender to target inside the sender's
// room. An absent or saturated target produces a PeerUnreachable reply to
// the sender and ErrPeerUnreachable.
func (r *Relay) Signal(from core.Endpoint, target domain.ConnectionID, payload json.RawMessage) error {
	room, ok := r.Registry.RoomOf(from.ID())
	if !ok {
		return fmt.Errorf("%w: join a room before signaling", core.ErrRoomNotFound)
	}
	dst, ok := r.Registry.Find(room, target)
	if !ok {
		r.send(from, core.NewPeerUnreachable(target))
		return fmt.Errorf("%w: %s", core.ErrPeerUnreachable, target)
	}
	f, err := core.Encode(core.NewSignal(from.ID(), payload))
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrBadRequest, err)
	}
	if err := dst.Endpoint.TrySend(f); err != nil {
		log.Warn().Str("module", "app.relay").Str("room", string(room)).Str("from", string(from.ID())).
			Str("to", string(target)).Err(err).Msg("signal not delivered")
		r.applyPolicy(dst.Endpoint)
		r.send(from, core.NewPeerUnreachable(target))
		return fmt.Errorf("%w: %s", core.ErrPeerUnreachable, target)
	}
	return nil
}

// Peers is the live presence of a room in join order.
func (r *Relay) Peers(room domain.RoomID) []core.Peer {
	members := r.Registry.List(room)
	out := make([]core.Peer, 0, len(members))
	for _, m := range members {
		out = append(out, core.PeerOf(m.PresenceEntry))
	}
	return out
}

// Roster describes an active room: who is connected and who is a member.
func (r *Relay) Roster(ctx context.Context, room domain.RoomID) (core.RoomUsersEvent, error) {
	rec, err := r.Directory.Get(ctx, room)
	if err != nil {
		return core.RoomUsersEvent{}, err
	}
	return core.NewRoomUsers(room, r.Peers(room), rec.Participants), nil
}

func (r *Relay) send(ep core.Endpoint, v any) {
	f, err := core.Encode(v)
	if err != nil {
		log.Error().Str("module", "app.relay").Err(err).Msg("encode event")
		return
	}
	r.sendFrame(ep, f)
}

func (r *Relay) sendFrame(ep core.Endpoint, f core.Frame) {
	if err := ep.TrySend(f); err != nil {
		log.Warn().Str("module", "app.relay").Str("conn", string(ep.ID())).Err(err).Msg("send failed")
		r.applyPolicy(ep)
	}
}

func (r *Relay) broadcast(room domain.RoomID, v any, except ...domain.ConnectionID) {
	f, err := core.Encode(v)
	if err != nil {
		log.Error().Str("module", "app.relay").Err(err).Msg("encode event")
		return
	}
	res := r.Registry.Broadcast(room, f, except...)
	for _, slow := range res.Dropped {
		r.applyPolicy(slow)
	}
}

func (r *Relay) applyPolicy(ep core.Endpoint) {
	switch r.Policy.OnBackPressure(ep) {
	case CloseConnection:
		log.Warn().Str("module", "app.relay").Str("conn", string(ep.ID())).Msg("closing slow connection")
		ep.Close()
	case DropFrame, NoAction:
		log.Debug().Str("module", "app.relay").Str("conn", string(ep.ID())).Msg("frame dropped")
	}
}
