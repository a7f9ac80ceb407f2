// Package sessioncache holds the single in-memory view of the current
// authentication state that the rest of the application reads.
//
// A Cache starts Loading. Writers reserve a generation with Stamp and later
// Publish a State under it; the cache accepts a publish only when its
// generation is newer than the one currently shown. A writer that stamped
// early and publishes late therefore loses to anyone who stamped after it:
//
//	gen := cache.Stamp()
//	// ... backend round trip ...
//	if !cache.Publish(gen, sessioncache.Signed(sess)) {
//		// a newer state won
//	}
//
// Get returns an atomic snapshot and never blocks on writers. Change
// listeners registered with OnChange run in publish order with no lock held.
// Writers that publish under a lock of their own call Set under it and Flush
// once it is released.
package sessioncache
