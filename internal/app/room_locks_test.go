package app

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomLocksSerializeSameRoom(t *testing.T) {
	locks := NewRoomLocks()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("r")
			defer unlock()
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, locks.Len())
}

func TestRoomLocksIndependentRooms(t *testing.T) {
	locks := NewRoomLocks()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on room b blocked behind room a")
	}
}

func TestRoomLocksUnlockTwiceIsSafe(t *testing.T) {
	locks := NewRoomLocks()
	unlock := locks.Lock("r")
	unlock()
	unlock()
	assert.Equal(t, 0, locks.Len())
}

func TestRoomLocksPairsInOppositeOrder(t *testing.T) {
	locks := NewRoomLocks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			locks.Lock("a", "b")()
		}()
		go func() {
			defer wg.Done()
			locks.Lock("b", "a")()
		}()
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pair locks deadlocked")
	}
	assert.Equal(t, 0, locks.Len())
}

func TestRoomLocksSameRoomTwice(t *testing.T) {
	locks := NewRoomLocks()
	unlock := locks.Lock("r", "r")
	assert.Equal(t, 1, locks.Len())
	unlock()
	assert.Equal(t, 0, locks.Len())
}
