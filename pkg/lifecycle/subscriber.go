package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type queuedEvent struct {
	event identity.Event
	gen   uint64
}

// subscriber receives backend events, stamps them and hands them one by one
// to handle on its own goroutine. The queue is unbounded so the backend's
// callback never blocks.
type subscriber struct {
	stamp  func() uint64
	handle func(context.Context, queuedEvent)
	logger *slog.Logger

	mu     sync.Mutex
	queue  []queuedEvent
	closed bool
	notify chan struct{}

	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	stopOnce    sync.Once
}

func newSubscriber(backend identity.Backend, stamp func() uint64, handle func(context.Context, queuedEvent), l *slog.Logger) *subscriber {
	ctx, cancel := context.WithCancel(context.Background())
	s := &subscriber{
		stamp:  stamp,
		handle: handle,
		logger: l,
		notify: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run()
	s.unsubscribe = backend.Subscribe(s.deliver)
	return s
}

func (s *subscriber) deliver(ev identity.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, queuedEvent{event: ev, gen: s.stamp()})
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) next() (queuedEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return queuedEvent{}, false
	}
	ev := s.queue[0]
	s.queue[0] = queuedEvent{}
	s.queue = s.queue[1:]
	return ev, true
}

func (s *subscriber) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.notify:
		}
		for s.ctx.Err() == nil {
			ev, ok := s.next()
			if !ok {
				break
			}
			s.handle(s.ctx, ev)
		}
	}
}

// stop unsubscribes once, discards queued events and waits for the handler
// goroutine to return.
func (s *subscriber) stop() {
	s.stopOnce.Do(func() {
		s.unsubscribe()
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		s.cancel()
	})
	<-s.done
}

// handleEvent applies one backend event. It runs on the subscriber goroutine.
func (m *Manager) handleEvent(ctx context.Context, qe queuedEvent) {
	ev := qe.event
	kind := ev.Kind.String()
	log := m.logger.With(logger.Event(kind), logger.Generation(qe.gen))

	var next *session.Session
	switch {
	case ev.Kind == identity.EventSignedOut:
	case ev.Kind.CarriesSession() && m.validator.IsLive(ev.Session):
		next = ev.Session
	default:
		s, err := m.reconcile(ctx)
		if err != nil {
			m.metrics.event(kind, "failed")
			log.WarnContext(ctx, "reconciliation after backend event failed", logger.Error(err))
			return
		}
		next = s
	}

	defer m.cache.Flush()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseReady || !m.cache.IsCurrent(qe.gen) {
		m.metrics.event(kind, "stale")
		log.DebugContext(ctx, "dropping stale backend event")
		return
	}
	if m.commitLocked(ctx, qe.gen, next) {
		m.metrics.event(kind, "applied")
	}
}
