package admission_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/pagescrape/admission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestController_Admit(t *testing.T) {
	t.Parallel()

	t.Run("admits up to the limit then rejects", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(3, admission.WithClock(clock.Now))

		assert.True(t, c.Admit("a"))
		assert.True(t, c.Admit("a"))
		assert.True(t, c.Admit("a"))
		assert.False(t, c.Admit("a"))
		assert.Equal(t, 0, c.Remaining("a"))
	})

	t.Run("rejected attempts are not recorded", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(1, admission.WithClock(clock.Now))

		require.True(t, c.Admit("a"))
		clock.Advance(30 * time.Second)
		require.False(t, c.Admit("a"))

		// The first attempt expires; the rejected one never counted.
		clock.Advance(31 * time.Second)
		assert.True(t, c.Admit("a"))
	})

	t.Run("clients are independent", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(1, admission.WithClock(clock.Now))

		assert.True(t, c.Admit("a"))
		assert.False(t, c.Admit("a"))
		assert.True(t, c.Admit("b"))
	})

	t.Run("window slides", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(2, admission.WithClock(clock.Now))

		require.True(t, c.Admit("a"))
		clock.Advance(40 * time.Second)
		require.True(t, c.Admit("a"))
		require.False(t, c.Admit("a"))

		clock.Advance(21 * time.Second)
		assert.True(t, c.Admit("a"))
		assert.False(t, c.Admit("a"))
	})

	t.Run("attempt exactly one window old has expired", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(1, admission.WithClock(clock.Now))

		require.True(t, c.Admit("a"))
		clock.Advance(time.Minute)
		assert.True(t, c.Admit("a"))
	})

	t.Run("zero limit rejects everything", func(t *testing.T) {
		t.Parallel()

		c := admission.New(0)

		assert.False(t, c.Admit("a"))
		assert.Equal(t, 0, c.Remaining("a"))
	})

	t.Run("rejection with empty window keeps no entry", func(t *testing.T) {
		t.Parallel()

		c := admission.New(0)

		require.False(t, c.Admit("a"))
		require.False(t, c.Admit("b"))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("rejection with full window keeps the entry", func(t *testing.T) {
		t.Parallel()

		c := admission.New(1)

		require.True(t, c.Admit("a"))
		require.False(t, c.Admit("a"))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("custom window", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(1, admission.WithClock(clock.Now), admission.WithWindow(10*time.Second))

		require.True(t, c.Admit("a"))
		clock.Advance(11 * time.Second)
		assert.True(t, c.Admit("a"))
	})
}

func TestController_Remaining(t *testing.T) {
	t.Parallel()

	t.Run("unknown client has full allowance", func(t *testing.T) {
		t.Parallel()

		c := admission.New(5)

		assert.Equal(t, 5, c.Remaining("nobody"))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("does not consume an attempt", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(2, admission.WithClock(clock.Now))

		require.True(t, c.Admit("a"))
		assert.Equal(t, 1, c.Remaining("a"))
		assert.Equal(t, 1, c.Remaining("a"))
		assert.True(t, c.Admit("a"))
	})

	t.Run("drops idle entries", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := admission.New(2, admission.WithClock(clock.Now))

		require.True(t, c.Admit("a"))
		require.Equal(t, 1, c.Len())

		clock.Advance(2 * time.Minute)
		assert.Equal(t, 2, c.Remaining("a"))
		assert.Equal(t, 0, c.Len())

		// A dropped client starts fresh.
		assert.True(t, c.Admit("a"))
		assert.Equal(t, 1, c.Len())
	})
}

func TestController_Limit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10, admission.New(10).Limit())
	assert.Equal(t, 0, admission.New(-3).Limit())
}

func TestController_ConcurrentAdmitNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	const (
		limit      = 10
		goroutines = 50
	)

	clock := newFakeClock()
	c := admission.New(limit, admission.WithClock(clock.Now))

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Admit("shared") {
				admitted.Add(1)
			}
			// Interleave status checks that may prune the entry.
			c.Remaining("shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), admitted.Load())
	assert.Equal(t, 0, c.Remaining("shared"))
}

func TestController_ConcurrentClientsAreIsolated(t *testing.T) {
	t.Parallel()

	const (
		clients = 20
		perEach = 5
		limit   = 3
	)

	c := admission.New(limit)

	var wg sync.WaitGroup
	counts := make([]atomic.Int64, clients)
	for i := 0; i < clients; i++ {
		for j := 0; j < perEach; j++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if c.Admit(fmt.Sprintf("client-%d", i)) {
					counts[i].Add(1)
				}
			}(i)
		}
	}
	wg.Wait()

	for i := range counts {
		assert.Equal(t, int64(limit), counts[i].Load(), "client-%d", i)
	}
}
