// Package identity describes the boundary between sessionkit and the remote
// identity backend that issues tokens, checks credentials and announces
// session changes.
//
// Backend is the required surface. Optional capabilities are separate
// interfaces discovered with a type assertion:
//
//	if r, ok := backend.(identity.Refresher); ok {
//		sess, err := r.Refresh(ctx)
//	}
//
// Restorer hands a locally persisted session back to the backend at startup,
// Refresher exchanges the refresh token, and VerificationResender re-sends
// the sign-up confirmation mail.
//
// Errors returned by backends are classified with the sentinels in this
// package. IsCredentialError groups the ones caused by user input or a
// backend rejection; those are reported to the caller of the failing
// operation and never retried.
//
// Listeners is a small fan-out helper backends use to implement Subscribe.
package identity
