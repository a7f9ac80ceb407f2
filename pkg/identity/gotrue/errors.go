package gotrue

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
)

var (
	ErrInvalidConfig   = errors.New("gotrue.invalid_config")
	ErrInvalidResponse = errors.New("gotrue.invalid_response")
	ErrClosed          = errors.New("gotrue.closed")
)

// APIError is a non-2xx answer from the auth server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error_code"`
	Message string `json:"msg"`

	// Legacy OAuth-style fields returned by older servers.
	LegacyError       string `json:"error"`
	LegacyDescription string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gotrue: status %d: %s: %s", e.Status, e.code(), e.message())
}

func (e *APIError) Unwrap() error {
	return identity.ErrRejected
}

func (e *APIError) code() string {
	if e.Code != "" {
		return e.Code
	}
	return e.LegacyError
}

func (e *APIError) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.LegacyDescription
}

type grant int

const (
	grantNone grant = iota
	grantPassword
	grantRefresh
)

// classify maps err onto the identity sentinels. Non-API errors pass through.
func classify(err error, g grant) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	code, msg := apiErr.code(), apiErr.message()
	wrap := func(sentinel error) error {
		if msg == "" {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, msg)
	}

	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", identity.ErrUnavailable, apiErr.Status)
	case apiErr.Status == http.StatusTooManyRequests,
		code == "over_request_rate_limit",
		code == "over_email_send_rate_limit":
		return wrap(identity.ErrRateLimited)
	case code == "email_not_confirmed",
		strings.Contains(strings.ToLower(msg), "email not confirmed"):
		return wrap(identity.ErrEmailNotConfirmed)
	case g == grantRefresh && (code == "invalid_grant" ||
		code == "refresh_token_not_found" ||
		code == "refresh_token_already_used" ||
		code == "session_not_found" ||
		code == "session_expired"):
		return wrap(identity.ErrSessionRevoked)
	case code == "invalid_credentials",
		g == grantPassword && code == "invalid_grant":
		return wrap(identity.ErrInvalidCredentials)
	case code == "user_already_exists", code == "email_exists":
		return wrap(identity.ErrUserExists)
	case code == "weak_password",
		code == "validation_failed",
		code == "email_address_invalid",
		apiErr.Status == http.StatusUnprocessableEntity:
		return wrap(identity.ErrInvalidInput)
	}
	return apiErr
}
