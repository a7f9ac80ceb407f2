package sessioncache

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Cache is safe for concurrent use.
type Cache struct {
	state atomic.Pointer[State]
	next  atomic.Uint64

	mu          sync.Mutex
	listeners   []listener
	pending     []State
	dispatching bool
}

type listener struct {
	id uuid.UUID
	fn func(State)
}

// New returns a cache in the Loading state with generation zero.
func New() *Cache {
	c := &Cache{}
	c.state.Store(&State{Loading: true})
	return c
}

// Get returns the current snapshot.
func (c *Cache) Get() State {
	return *c.state.Load()
}

// Stamp reserves a generation newer than every previously stamped one.
func (c *Cache) Stamp() uint64 {
	return c.next.Add(1)
}

// IsCurrent reports whether a publish stamped with gen would be accepted now.
func (c *Cache) IsCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen > c.state.Load().Generation
}

// Publish replaces the current state when gen is newer than the published
// generation and notifies listeners. It reports whether st was accepted.
func (c *Cache) Publish(gen uint64, st State) bool {
	ok := c.Set(gen, st)
	c.Flush()
	return ok
}

// Set is Publish without delivery: an accepted state becomes visible to Get
// at once, and its notification waits for the next Flush. Callers that hold
// their own lock while publishing use Set under it and Flush after releasing
// it, so listeners never run under that lock.
func (c *Cache) Set(gen uint64, st State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen <= c.state.Load().Generation {
		return false
	}
	// Keep Stamp ahead of generations that were not obtained from it.
	for {
		n := c.next.Load()
		if n >= gen || c.next.CompareAndSwap(n, gen) {
			break
		}
	}

	st = st.normalize()
	st.Generation = gen
	c.state.Store(&st)
	c.pending = append(c.pending, st)
	return true
}

// Flush delivers queued notifications in the order their states were set.
// Listeners run with no cache lock held. Only one Flush delivers at a time;
// a Flush that finds another one running returns immediately and leaves its
// queued states to the running one, which includes a Flush reached from
// inside a listener.
func (c *Cache) Flush() {
	c.mu.Lock()
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true
	c.mu.Unlock()

	drained := false
	defer func() {
		if !drained {
			// A listener panicked; let the next Flush take over.
			c.mu.Lock()
			c.dispatching = false
			c.mu.Unlock()
		}
	}()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.dispatching = false
			c.mu.Unlock()
			drained = true
			return
		}
		st := c.pending[0]
		c.pending[0] = State{}
		c.pending = c.pending[1:]
		ls := slices.Clone(c.listeners)
		c.mu.Unlock()

		for _, l := range ls {
			l.fn(st)
		}
	}
}

// OnChange registers fn for every accepted publish. The returned cancel
// function is idempotent. fn runs outside the cache lock and may call any
// Cache method; states it publishes are delivered after it returns.
func (c *Cache) OnChange(fn func(State)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	id := uuid.New()

	c.mu.Lock()
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, l := range c.listeners {
				if l.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
