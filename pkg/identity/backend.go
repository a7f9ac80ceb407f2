package identity

import (
	"context"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// Backend is the identity service client.
type Backend interface {
	// GetCurrentSession returns the session the backend considers current,
	// or nil when there is none. An error means the backend could not be
	// asked.
	GetCurrentSession(ctx context.Context) (*session.Session, error)
	SignIn(ctx context.Context, creds Credentials) (*session.Session, error)
	SignUp(ctx context.Context, creds Credentials) (SignUpResult, error)
	SignOut(ctx context.Context) error
	// Subscribe registers fn for state change events until unsubscribe is
	// called. Unsubscribe is idempotent.
	Subscribe(fn Listener) (unsubscribe func())
}

// Restorer is implemented by backends that can adopt a locally persisted session.
type Restorer interface {
	Restore(ctx context.Context, s *session.Session) error
}

// Refresher is implemented by backends that can exchange the refresh token.
type Refresher interface {
	Refresh(ctx context.Context) (*session.Session, error)
}

// VerificationResender is implemented by backends that can re-send the
// sign-up confirmation mail.
type VerificationResender interface {
	ResendVerification(ctx context.Context, email string) error
}

// SignUpResult describes the outcome of a registration.
type SignUpResult struct {
	SubjectID string
	// PendingConfirmation is true when the account exists but the user must
	// confirm the address before signing in.
	PendingConfirmation bool
	// Session is set when the backend signed the new user in immediately.
	// It is informational; registration never changes the current session.
	Session *session.Session
}
