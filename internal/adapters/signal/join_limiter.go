package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

// JoinLimiter slows down room password guessing: each user gets at most
// max join attempts in any window.
type JoinLimiter struct {
	mu      sync.Mutex
	recent  map[domain.UserID][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
	sweepAt time.Time
}

func NewJoinLimiter(max int, window time.Duration) *JoinLimiter {
	return &JoinLimiter{
		recent: make(map[domain.UserID][]time.Time),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow records an attempt by uid and reports whether it is within budget.
// Rejected attempts are not recorded.
func (l *JoinLimiter) Allow(uid domain.UserID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	kept := expire(l.recent[uid], cutoff)
	if len(kept) >= l.max {
		l.recent[uid] = kept
		return false
	}
	l.recent[uid] = append(kept, now)
	return true
}

// sweep drops users with no attempt inside the window, at most once per window.
func (l *JoinLimiter) sweep(now, cutoff time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	l.sweepAt = now.Add(l.window)
	for uid, ts := range l.recent {
		if len(expire(ts, cutoff)) == 0 {
			delete(l.recent, uid)
		}
	}
}

// expire keeps the attempts after cutoff; ts is in ascending order.
func expire(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// tracked is the number of users with recorded attempts.
func (l *JoinLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recent)
}
