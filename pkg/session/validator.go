package session

import "time"

// WellFormed reports why s cannot be used, or nil when every required field
// is present.
func WellFormed(s *Session) error {
	switch {
	case s == nil:
		return ErrNilSession
	case s.SubjectID == "":
		return ErrMissingSubject
	case s.Credentials.AccessToken == "":
		return ErrMissingAccessToken
	case s.ExpiresAt.IsZero():
		return ErrMissingExpiry
	}
	return nil
}

// IsLiveAt reports whether s is well-formed and expires strictly after now.
func IsLiveAt(s *Session, now time.Time) bool {
	return WellFormed(s) == nil && s.ExpiresAt.After(now)
}

// Validator evaluates liveness against an injectable clock. It has no side
// effects; clearing unusable state is the caller's decision.
type Validator struct {
	now func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock replaces time.Now. Nil clocks are ignored.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Now returns the validator's current time.
func (v *Validator) Now() time.Time {
	return v.now()
}

// IsLive reports whether s is usable at this instant.
func (v *Validator) IsLive(s *Session) bool {
	return IsLiveAt(s, v.now())
}

// IsLiveRecord decodes a persisted record and reports whether it is live.
// Undecodable records are not live.
func (v *Validator) IsLiveRecord(raw string) bool {
	s, err := Decode(raw)
	if err != nil {
		return false
	}
	return v.IsLive(s)
}
