// Package gotrue is an identity.Backend for GoTrue, the auth server behind
// Supabase. It speaks the REST API under <URL>/auth/v1 and keeps the current
// session in memory.
//
// Client implements identity.Backend together with identity.Restorer,
// identity.Refresher and identity.VerificationResender. Every state change
// it performs is announced to subscribers:
//
//	SignIn                -> EventSignedIn
//	SignOut               -> EventSignedOut
//	Refresh               -> EventTokenRefreshed (EventSignedOut when revoked)
//	GetCurrentSession     -> EventUserUpdated when the user record changed
//
// Registration never changes the current session, even when the server
// signs the new user in immediately; the session is only reported in the
// SignUpResult.
//
// With AutoRefresh enabled the client refreshes the session shortly before
// it expires. Transport failures during auto refresh are retried on the next
// tick; a rejected refresh token ends the session.
//
// Server errors are mapped onto the identity sentinels. Anything without a
// mapping is returned as *APIError, which unwraps to identity.ErrRejected.
package gotrue
