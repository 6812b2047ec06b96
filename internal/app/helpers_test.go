package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/require"
)

var errFull = errors.New("send buffer full")

// fakeEndpoint records every frame it accepts. With capacity > 0 it refuses
// frames once that many are held.
type fakeEndpoint struct {
	id       domain.ConnectionID
	capacity int

	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func newEndpoint(id string) *fakeEndpoint {
	return &fakeEndpoint{id: domain.ConnectionID(id)}
}

func (e *fakeEndpoint) ID() domain.ConnectionID { return e.id }

func (e *fakeEndpoint) TrySend(f core.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("closed")
	}
	if e.capacity > 0 && len(e.frames) >= e.capacity {
		return errFull
	}
	e.frames = append(e.frames, f)
	return nil
}

func (e *fakeEndpoint) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

func (e *fakeEndpoint) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

type received struct {
	Type         string              `json:"type"`
	RoomID       domain.RoomID       `json:"roomId"`
	ConnectionID domain.ConnectionID `json:"connectionId"`
	UserID       domain.UserID       `json:"userId"`
	From         domain.ConnectionID `json:"from"`
	Payload      json.RawMessage     `json:"payload"`
	Peers        []core.Peer         `json:"peers"`
	Kind         string              `json:"kind"`
}

// drain decodes and forgets everything received so far.
func (e *fakeEndpoint) drain(t *testing.T) []received {
	t.Helper()
	e.mu.Lock()
	frames := e.frames
	e.frames = nil
	e.mu.Unlock()
	out := make([]received, 0, len(frames))
	for _, f := range frames {
		var r received
		require.NoError(t, json.Unmarshal(f, &r))
		out = append(out, r)
	}
	return out
}

func types(evs []received) []string {
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}

func member(room, conn, user string, ep core.Endpoint) Member {
	return Member{
		PresenceEntry: domain.PresenceEntry{
			ConnectionID: domain.ConnectionID(conn),
			RoomID:       domain.RoomID(room),
			UserID:       domain.UserID(user),
			DisplayName:  user,
		},
		Endpoint: ep,
	}
}

func identity(user string) domain.Identity {
	return domain.Identity{UserID: domain.UserID(user), DisplayName: user}
}
