// Package cache holds the process-wide snapshot of the active thread list.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
)

type snapshot struct {
	threads    []domain.ThreadListItem
	updatedAt  time.Time
	generation uint64
}

// ThreadList is a single-slot cache: it is either empty or holds one whole
// listing. There is no per-item invalidation.
type ThreadList struct {
	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
	now        func() time.Time
}

type Option func(*ThreadList)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *ThreadList) { c.now = now }
}

func NewThreadList(opts ...Option) *ThreadList {
	c := &ThreadList{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached listing and when it was stored. ok is false when empty.
func (c *ThreadList) Get() (threads []domain.ThreadListItem, updatedAt time.Time, ok bool) {
	s := c.current.Load()
	if s == nil {
		return nil, time.Time{}, false
	}
	return s.threads, s.updatedAt, true
}

// Set stores threads unconditionally; the last writer wins.
func (c *ThreadList) Set(threads []domain.ThreadListItem) {
	c.current.Store(&snapshot{threads: threads, updatedAt: c.now(), generation: c.generation.Load()})
}

// Generation changes on every Clear. Read it before fetching from storage
// and pass it to SetIfGeneration.
func (c *ThreadList) Generation() uint64 {
	return c.generation.Load()
}

// SetIfGeneration stores threads only if no Clear happened since gen was read.
// It reports whether the listing was stored.
func (c *ThreadList) SetIfGeneration(gen uint64, threads []domain.ThreadListItem) bool {
	if c.generation.Load() != gen {
		return false
	}
	next := &snapshot{threads: threads, updatedAt: c.now(), generation: gen}
	for {
		prev := c.current.Load()
		if prev != nil && prev.generation > gen {
			return false
		}
		if c.generation.Load() != gen {
			return false
		}
		if c.current.CompareAndSwap(prev, next) {
			break
		}
	}
	// a Clear that landed between the check and the swap must still win
	if c.generation.Load() != gen {
		c.current.CompareAndSwap(next, nil)
		return false
	}
	return true
}

// Clear empties the cache and starts a new generation.
func (c *ThreadList) Clear() {
	c.generation.Add(1)
	c.current.Store(nil)
}

// IsStale is true when the cache is empty or older than ttl. A zero ttl never
// expires by age.
func (c *ThreadList) IsStale(ttl time.Duration) bool {
	s := c.current.Load()
	if s == nil {
		return true
	}
	if ttl == 0 {
		return false
	}
	return c.now().Sub(s.updatedAt) > ttl
}
