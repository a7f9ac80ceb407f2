// Package lifecycle owns the authentication session of the running process.
//
// A Manager ties together the persisted record (session.Store), the liveness
// rules (session.Validator), the published state (sessioncache.Cache) and the
// identity backend. It is the only writer of the store and the cache.
//
// # Startup
//
// Start reads the persisted record and drops it when it is not live. A live
// record is handed to backends implementing identity.Restorer. The backend
// is then asked for its current session, which wins over the local record.
// If that query fails the manager enters PhaseFailed and publishes a state
// whose Err wraps ErrConnectivity; this is distinct from "signed out", which
// is PhaseReady with no session. A backend session that already expired is
// signed out. Only after this first reconciliation does the manager
// subscribe to backend events. Start can be called again after a failure.
//
// Start has no timeout of its own. Bound it with ctx:
//
//	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
//	defer cancel()
//	if err := m.Start(ctx); errors.Is(err, lifecycle.ErrConnectivity) {
//		// show an outage notice, offer a retry
//	}
//
// # Ordering
//
// Every commit (store write or clear plus cache publish) happens inside one
// critical section and carries a generation from the cache. Explicit
// operations take their generation at commit time; backend events take it
// when they are delivered. A backend event delivered before a later SignOut
// therefore can never re-publish its session once the SignOut committed.
//
// # Events
//
// Events are queued without bound and handled one at a time on a dedicated
// goroutine, so a backend that emits events synchronously from inside its
// own calls never blocks. Close releases the subscription exactly once and
// waits for the handler to exit.
package lifecycle
