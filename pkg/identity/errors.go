package identity

import "errors"

var (
	ErrInvalidInput       = errors.New("identity.invalid_input")
	ErrInvalidCredentials = errors.New("identity.invalid_credentials")
	ErrEmailNotConfirmed  = errors.New("identity.email_not_confirmed")
	ErrUserExists         = errors.New("identity.user_exists")
	ErrRateLimited        = errors.New("identity.rate_limited")
	ErrRejected           = errors.New("identity.rejected")
	ErrUnavailable        = errors.New("identity.unavailable")
	ErrSessionRevoked     = errors.New("identity.session_revoked")
	ErrNoSession          = errors.New("identity.no_session")
)

// IsCredentialError reports whether err was caused by the supplied input or
// a backend rejection rather than by connectivity.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrEmailNotConfirmed) ||
		errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrRejected)
}
