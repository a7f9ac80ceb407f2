package identity

import "github.com/dmitrymomot/sessionkit/pkg/session"

type EventKind int

const (
	EventOther EventKind = iota
	EventSignedIn
	EventSignedOut
	EventTokenRefreshed
	EventUserUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	case EventUserUpdated:
		return "user_updated"
	default:
		return "other"
	}
}

// CarriesSession reports whether events of this kind announce a new session.
func (k EventKind) CarriesSession() bool {
	return k == EventSignedIn || k == EventTokenRefreshed || k == EventUserUpdated
}

// Event is a state change notification. Session may be nil.
type Event struct {
	Kind    EventKind
	Session *session.Session
}

// Listener receives events. Implementations must return quickly.
type Listener func(Event)
