// Package session defines the client-side authentication session, the rules
// that decide whether a session may be used, and the persisted record that
// survives process restarts.
//
// # Model
//
// A Session is an immutable value: the principal's SubjectID, the opaque
// Credentials issued by the identity backend and an absolute ExpiresAt.
// Replacing a session means constructing a new value; nothing in sessionkit
// mutates a Session after it was created.
//
// # Liveness
//
// A session is live when it is well-formed and ExpiresAt is strictly after
// the instant of use. Liveness is never cached: a session that was live when
// it was published can expire while it sits in memory, so callers re-check
// with IsLiveAt or a Validator at the point of use.
//
// # Persisted record
//
// Store keeps one JSON record under a single key of a storage.Storage. The
// record is a disposable cache of the identity backend's state:
//
//	{"v":1,"subject_id":"…","credentials":{"access_token":"…"},"expires_at":1767225600}
//
// Decoding fails closed. A missing, null, quoted or otherwise non-numeric
// expires_at, an unknown version or broken JSON all make Decode return an
// error, and Store.Read clears such a record and reports no session.
// Store.Read never checks expiry; pairing Read with a Validator is the
// caller's job.
package session
