package sessioncache

import "github.com/dmitrymomot/sessionkit/pkg/session"

// State is an immutable snapshot of the authentication state.
type State struct {
	Session    *session.Session
	Loading    bool
	Err        error
	Generation uint64
}

// Signed returns the state of a signed-in principal.
func Signed(s *session.Session) State {
	return State{Session: s}
}

// Absent returns the signed-out state.
func Absent() State {
	return State{}
}

// Failed returns the state published when the backend could not be reached.
func Failed(err error) State {
	return State{Err: err}
}

// SignedIn reports whether the state carries a session. Callers still check
// liveness before use.
func (s State) SignedIn() bool {
	return s.Session != nil
}

func (s State) normalize() State {
	if s.Loading {
		s.Session = nil
		s.Err = nil
	}
	return s
}
