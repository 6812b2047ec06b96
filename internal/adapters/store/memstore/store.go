// Package memstore keeps users and rooms in process memory. It backs the
// "memory" store driver and the service tests.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]*domain.Room
	users  map[domain.UserID]*domain.User
	byName map[string]domain.UserID
}

var (
	_ core.RoomStore = (*Store)(nil)
	_ core.UserStore = (*Store)(nil)
)

func New() *Store {
	return &Store{
		rooms:  make(map[domain.RoomID]*domain.Room),
		users:  make(map[domain.UserID]*domain.User),
		byName: make(map[string]domain.UserID),
	}
}

func cloneRoom(r *domain.Room) *domain.Room {
	c := *r
	c.Participants = slices.Clone(r.Participants)
	return &c
}

func (s *Store) CreateRoom(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return core.ErrDuplicate
	}
	s.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (s *Store) GetRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneRoom(r), nil
}

func (s *Store) AddParticipant(_ context.Context, id domain.RoomID, user domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return core.ErrNotFound
	}
	if !slices.Contains(r.Participants, user) {
		r.Participants = append(r.Participants, user)
	}
	return nil
}

func (s *Store) RemoveParticipant(_ context.Context, id domain.RoomID, user domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return core.ErrNotFound
	}
	r.Participants = slices.DeleteFunc(r.Participants, func(u domain.UserID) bool { return u == user })
	return nil
}

func (s *Store) Deactivate(_ context.Context, id domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return core.ErrNotFound
	}
	r.IsActive = false
	return nil
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[user.Username]; ok {
		return core.ErrDuplicate
	}
	if _, ok := s.users[user.ID]; ok {
		return core.ErrDuplicate
	}
	c := *user
	s.users[user.ID] = &c
	s.byName[user.Username] = user.ID
	return nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *s.users[id]
	return &c, nil
}

func (s *Store) FindUserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *u
	return &c, nil
}
