package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Member binds a presence entry to the endpoint that delivers to it.
type Member struct {
	domain.PresenceEntry
	Endpoint core.Endpoint `json:"-"`
}

// roomPresence is the live membership of one room.
// order keeps join order; byConn and byUser index into it.
type roomPresence struct {
	mu     sync.Mutex
	dead   bool
	order  []domain.ConnectionID
	byConn map[domain.ConnectionID]Member
	byUser map[domain.UserID]domain.ConnectionID
}

func newRoomPresence() *roomPresence {
	return &roomPresence{
		byConn: make(map[domain.ConnectionID]Member),
		byUser: make(map[domain.UserID]domain.ConnectionID),
	}
}

func (p *roomPresence) remove(conn domain.ConnectionID) (Member, bool) {
	m, ok := p.byConn[conn]
	if !ok {
		return Member{}, false
	}
	delete(p.byConn, conn)
	if p.byUser[m.UserID] == conn {
		delete(p.byUser, m.UserID)
	}
	p.order = slices.DeleteFunc(p.order, func(c domain.ConnectionID) bool { return c == conn })
	return m, true
}

func (p *roomPresence) snapshot() []Member {
	out := make([]Member, 0, len(p.order))
	for _, c := range p.order {
		out = append(out, p.byConn[c])
	}
	return out
}

// Registry is the in-memory presence set. Rooms are locked independently;
// a room's state is dropped as soon as it becomes empty.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomPresence

	connMu sync.RWMutex
	conns  map[domain.ConnectionID]domain.RoomID
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomID]*roomPresence),
		conns: make(map[domain.ConnectionID]domain.RoomID),
	}
}

// lockRoom returns the room's presence with its mutex held, or nil when the
// room has no presence and create is false.
func (r *Registry) lockRoom(id domain.RoomID, create bool) *roomPresence {
	for {
		r.mu.RLock()
		p, ok := r.rooms[id]
		r.mu.RUnlock()
		if !ok {
			if !create {
				return nil
			}
			r.mu.Lock()
			if p, ok = r.rooms[id]; !ok {
				p = newRoomPresence()
				r.rooms[id] = p
			}
			r.mu.Unlock()
		}
		p.mu.Lock()
		if !p.dead {
			return p
		}
		// collected between lookup and lock
		p.mu.Unlock()
	}
}

func (r *Registry) unlockRoom(id domain.RoomID, p *roomPresence) {
	if len(p.order) == 0 {
		r.mu.Lock()
		if r.rooms[id] == p {
			delete(r.rooms, id)
		}
		p.dead = true
		r.mu.Unlock()
	}
	p.mu.Unlock()
}

// Join records m in its room. If the same user already had a connection in
// that room, the older entry is removed and returned.
func (r *Registry) Join(m Member) (superseded Member, replaced bool) {
	p := r.lockRoom(m.RoomID, true)
	defer r.unlockRoom(m.RoomID, p)

	if prev, ok := p.byUser[m.UserID]; ok && prev != m.ConnectionID {
		superseded, replaced = p.remove(prev)
	}
	if _, ok := p.byConn[m.ConnectionID]; ok {
		p.remove(m.ConnectionID)
	}
	p.byConn[m.ConnectionID] = m
	p.byUser[m.UserID] = m.ConnectionID
	p.order = append(p.order, m.ConnectionID)

	r.connMu.Lock()
	if replaced {
		delete(r.conns, superseded.ConnectionID)
	}
	r.conns[m.ConnectionID] = m.RoomID
	r.connMu.Unlock()

	ev := log.Info().Str("module", "app.registry").Str("room", string(m.RoomID)).
		Str("conn", string(m.ConnectionID)).Str("user", string(m.UserID))
	if replaced {
		ev = ev.Str("superseded", string(superseded.ConnectionID))
	}
	ev.Msg("presence joined")
	return superseded, replaced
}

// Leave removes the entry for conn in room. Absent entries are a no-op.
func (r *Registry) Leave(room domain.RoomID, conn domain.ConnectionID) (Member, bool) {
	p := r.lockRoom(room, false)
	if p == nil {
		return Member{}, false
	}
	defer r.unlockRoom(room, p)

	m, ok := p.remove(conn)
	if !ok {
		return Member{}, false
	}
	r.connMu.Lock()
	if r.conns[conn] == room {
		delete(r.conns, conn)
	}
	r.connMu.Unlock()
	log.Info().Str("module", "app.registry").Str("room", string(room)).Str("conn", string(conn)).Msg("presence left")
	return m, true
}

// Clear removes every entry of room and returns them in join order.
func (r *Registry) Clear(room domain.RoomID) []Member {
	p := r.lockRoom(room, false)
	if p == nil {
		return nil
	}
	defer r.unlockRoom(room, p)

	out := p.snapshot()
	p.order = nil
	clear(p.byConn)
	clear(p.byUser)

	r.connMu.Lock()
	for _, m := range out {
		if r.conns[m.ConnectionID] == room {
			delete(r.conns, m.ConnectionID)
		}
	}
	r.connMu.Unlock()
	log.Info().Str("module", "app.registry").Str("room", string(room)).Int("removed", len(out)).Msg("presence cleared")
	return out
}

// List returns the room's entries in join order.
func (r *Registry) List(room domain.RoomID) []Member {
	p := r.lockRoom(room, false)
	if p == nil {
		return nil
	}
	defer r.unlockRoom(room, p)
	return p.snapshot()
}

func (r *Registry) Find(room domain.RoomID, conn domain.ConnectionID) (Member, bool) {
	p := r.lockRoom(room, false)
	if p == nil {
		return Member{}, false
	}
	defer r.unlockRoom(room, p)
	m, ok := p.byConn[conn]
	return m, ok
}

func (r *Registry) FindByUser(room domain.RoomID, user domain.UserID) (Member, bool) {
	p := r.lockRoom(room, false)
	if p == nil {
		return Member{}, false
	}
	defer r.unlockRoom(room, p)
	conn, ok := p.byUser[user]
	if !ok {
		return Member{}, false
	}
	return p.byConn[conn], true
}

// RoomOf reports which room conn currently occupies.
func (r *Registry) RoomOf(conn domain.ConnectionID) (domain.RoomID, bool) {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	room, ok := r.conns[conn]
	return room, ok
}

// Broadcast sends f to every entry of room except the listed connections.
func (r *Registry) Broadcast(room domain.RoomID, f core.Frame, except ...domain.ConnectionID) core.PublishResult {
	res := core.PublishResult{}
	for _, m := range r.List(room) {
		if slices.Contains(except, m.ConnectionID) {
			continue
		}
		if err := m.Endpoint.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, m.Endpoint)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.registry").Str("room", string(room)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// RoomCount is the number of rooms with at least one live entry.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
