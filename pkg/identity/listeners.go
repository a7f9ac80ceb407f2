package identity

import (
	"sync"

	"github.com/google/uuid"
)

// Listeners is a concurrency-safe set of event listeners. The zero value is
// ready to use.
type Listeners struct {
	mu    sync.RWMutex
	items []registered
}

type registered struct {
	id uuid.UUID
	fn Listener
}

// Add registers fn and returns an idempotent unsubscribe function.
func (l *Listeners) Add(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	id := uuid.New()

	l.mu.Lock()
	l.items = append(l.items, registered{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

// Emit delivers ev to every listener registered at the time of the call, in
// registration order. Listeners run on the caller's goroutine without the
// lock held, so they may unsubscribe.
func (l *Listeners) Emit(ev Event) {
	l.mu.RLock()
	snapshot := make([]Listener, len(l.items))
	for i, r := range l.items {
		snapshot[i] = r.fn
	}
	l.mu.RUnlock()

	for _, fn := range snapshot {
		fn(ev)
	}
}

// Len returns the number of registered listeners.
func (l *Listeners) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Listeners) remove(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.items {
		if r.id == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}
