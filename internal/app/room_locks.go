package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Meet/internal/domain"
)

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// RoomLocks serializes membership transitions per room. Different rooms
// never contend. Entries are dropped once nobody holds or waits on them.
type RoomLocks struct {
	mu    sync.Mutex
	locks map[domain.RoomID]*roomLock
}

func NewRoomLocks() *RoomLocks {
	return &RoomLocks{locks: make(map[domain.RoomID]*roomLock)}
}

// Lock blocks until the transition locks of all ids are held and returns
// their release. Locks are taken in id order, so callers locking
// overlapping sets cannot deadlock.
func (l *RoomLocks) Lock(ids ...domain.RoomID) (unlock func()) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	held := make([]*roomLock, 0, len(ids))
	for _, id := range ids {
		held = append(held, l.acquire(id))
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(ids) - 1; i >= 0; i-- {
				l.release(ids[i], held[i])
			}
		})
	}
}

func (l *RoomLocks) acquire(id domain.RoomID) *roomLock {
	l.mu.Lock()
	rl, ok := l.locks[id]
	if !ok {
		rl = &roomLock{}
		l.locks[id] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return rl
}

func (l *RoomLocks) release(id domain.RoomID, rl *roomLock) {
	rl.mu.Unlock()
	l.mu.Lock()
	rl.refs--
	if rl.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
}

// Len is the number of rooms with a held or awaited lock.
func (l *RoomLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
