package lifecycle

import "errors"

var (
	// ErrConnectivity is returned by Start and published in the state when the
	// identity backend could not be queried.
	ErrConnectivity = errors.New("lifecycle.connectivity_failure")

	ErrNotReady           = errors.New("lifecycle.not_ready")
	ErrAlreadyStarted     = errors.New("lifecycle.already_started")
	ErrClosed             = errors.New("lifecycle.closed")
	ErrSessionRejected    = errors.New("lifecycle.session_rejected")
	ErrRefreshUnsupported = errors.New("lifecycle.refresh_unsupported")
	ErrResendUnsupported  = errors.New("lifecycle.resend_unsupported")
	ErrNilBackend         = errors.New("lifecycle.nil_backend")
	ErrNilStore           = errors.New("lifecycle.nil_store")
	ErrInvalidTransition  = errors.New("lifecycle.invalid_transition")
)
