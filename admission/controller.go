// Package admission provides a per-client sliding-window admission
// controller implementing pagescrape.Admitter.
package admission

import (
	"sync"
	"time"

	"github.com/fwojciec/pagescrape"
)

// DefaultWindow is the length of the sliding window.
const DefaultWindow = time.Minute

var _ pagescrape.Admitter = (*Controller)(nil)

// Controller admits at most Limit attempts per client within any window of
// the configured length. Only admitted attempts are recorded.
//
// The map lock is held only to look up, insert or delete an entry. Each entry
// has its own lock so that unrelated clients never contend.
type Controller struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	times   []time.Time
	deleted bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithWindow sets the sliding window length. Defaults to DefaultWindow.
func WithWindow(d time.Duration) Option {
	return func(c *Controller) {
		c.window = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a Controller admitting limit attempts per window.
// A limit below zero is treated as zero, which rejects everything.
func New(limit int, opts ...Option) *Controller {
	if limit < 0 {
		limit = 0
	}
	c := &Controller{
		limit:   limit,
		window:  DefaultWindow,
		now:     time.Now,
		clients: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limit returns the per-window maximum.
func (c *Controller) Limit() int {
	return c.limit
}

// Admit records an attempt for clientID if fewer than Limit attempts were
// admitted within the window ending now.
func (c *Controller) Admit(clientID string) bool {
	for {
		e := c.load(clientID)

		e.mu.Lock()
		if e.deleted {
			// Lost a race with Remaining pruning an idle entry.
			e.mu.Unlock()
			continue
		}

		now := c.now()
		e.times = prune(e.times, now.Add(-c.window))
		if len(e.times) >= c.limit {
			if len(e.times) == 0 {
				c.drop(clientID, e)
			}
			e.mu.Unlock()
			return false
		}
		e.times = append(e.times, now)
		e.mu.Unlock()
		return true
	}
}

// Remaining reports how many attempts clientID may still make in the current
// window. It does not record an attempt. Idle entries are dropped.
func (c *Controller) Remaining(clientID string) int {
	c.mu.Lock()
	e, ok := c.clients[clientID]
	c.mu.Unlock()
	if !ok {
		return c.limit
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return c.limit
	}

	e.times = prune(e.times, c.now().Add(-c.window))
	if len(e.times) == 0 {
		c.drop(clientID, e)
		return c.limit
	}
	return max(0, c.limit-len(e.times))
}

// drop removes an entry with an empty window. The caller holds e.mu.
func (c *Controller) drop(clientID string, e *entry) {
	c.mu.Lock()
	if c.clients[clientID] == e {
		delete(c.clients, clientID)
	}
	c.mu.Unlock()
	e.deleted = true
}

// Len returns the number of clients currently tracked.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func (c *Controller) load(clientID string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.clients[clientID]
	if !ok {
		e = &entry{}
		c.clients[clientID] = e
	}
	return e
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order, so the survivors form a suffix.
func prune(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	return append(times[:0], times[i:]...)
}
