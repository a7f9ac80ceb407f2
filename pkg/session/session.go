package session

import "time"

// Credentials is the token material issued by the identity backend. It is
// opaque to sessionkit apart from the bearer token used for backend calls.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// Session represents an authenticated principal. Treat values as immutable.
type Session struct {
	SubjectID   string
	Email       string
	Credentials Credentials
	ExpiresAt   time.Time
}

// New creates a session. ExpiresAt is truncated to whole seconds because the
// persisted record stores unix seconds.
func New(subjectID string, creds Credentials, expiresAt time.Time) *Session {
	return &Session{
		SubjectID:   subjectID,
		Credentials: creds,
		ExpiresAt:   expiresAt.Truncate(time.Second),
	}
}

// WithEmail returns a copy of s carrying email.
func (s *Session) WithEmail(email string) *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Email = email
	return &cp
}

// TTL returns the time left until expiry relative to now. Negative values
// mean the session already expired.
func (s *Session) TTL(now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// Equal reports whether two sessions carry the same principal, credentials
// and expiry. Two nil sessions are equal.
func (s *Session) Equal(other *Session) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.SubjectID == other.SubjectID &&
		s.Email == other.Email &&
		s.Credentials == other.Credentials &&
		s.ExpiresAt.Equal(other.ExpiresAt)
}
