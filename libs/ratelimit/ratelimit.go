// Package ratelimit provides simple in-process rate limiters.
package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// RateLimiter checks whether an action with the given cost is allowed.
type RateLimiter interface {
	Check(cost int) (bool, error)
}

// KeyedRateLimiter tracks independent limits per key.
type KeyedRateLimiter interface {
	Check(key string, cost int) (bool, error)
}

// NewSimple returns a limiter allowing max cost per interval. It uses a single
// fixed window which allows bursting at window boundaries, which is acceptable
// for throttling log and alert traffic.
func NewSimple(max int, interval time.Duration) RateLimiter {
	return &simple{max: max, interval: interval}
}

type simple struct {
	mu          sync.Mutex
	max         int
	interval    time.Duration
	windowStart time.Time
	count       int
}

func (s *simple) Check(cost int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if s.windowStart.IsZero() || now.Sub(s.windowStart) >= s.interval {
		s.windowStart = now
		s.count = 0
	}
	s.count += cost
	return s.count <= s.max, nil
}

// NewLRUKeyed returns a keyed limiter that keeps at most size per-key limiters,
// evicting the least recently used.
func NewLRUKeyed(size int, newLimiter func() RateLimiter) KeyedRateLimiter {
	return &lruKeyed{
		size:       size,
		newLimiter: newLimiter,
		limiters:   make(map[string]*list.Element),
		order:      list.New(),
	}
}

type lruEntry struct {
	key string
	rl  RateLimiter
}

type lruKeyed struct {
	mu         sync.Mutex
	size       int
	newLimiter func() RateLimiter
	limiters   map[string]*list.Element
	order      *list.List
}

func (l *lruKeyed) Check(key string, cost int) (bool, error) {
	l.mu.Lock()
	el, ok := l.limiters[key]
	if ok {
		l.order.MoveToFront(el)
	} else {
		el = l.order.PushFront(&lruEntry{key: key, rl: l.newLimiter()})
		l.limiters[key] = el
		if l.order.Len() > l.size {
			old := l.order.Back()
			l.order.Remove(old)
			delete(l.limiters, old.Value.(*lruEntry).key)
		}
	}
	rl := el.Value.(*lruEntry).rl
	l.mu.Unlock()
	return rl.Check(cost)
}
