package session

import "errors"

var (
	// ErrMalformedRecord indicates the persisted record is not valid JSON or has the wrong shape.
	ErrMalformedRecord = errors.New("session.malformed_record")

	// ErrUnsupportedVersion indicates the record was written by an unknown schema version.
	ErrUnsupportedVersion = errors.New("session.unsupported_version")

	// ErrMissingExpiry indicates the record has no expires_at value.
	ErrMissingExpiry = errors.New("session.missing_expiry")

	// ErrInvalidExpiry indicates expires_at is not a JSON number of unix seconds.
	ErrInvalidExpiry = errors.New("session.invalid_expiry")

	// ErrMissingSubject indicates the session has no subject identifier.
	ErrMissingSubject = errors.New("session.missing_subject")

	// ErrMissingAccessToken indicates the session carries no access token.
	ErrMissingAccessToken = errors.New("session.missing_access_token")

	// ErrNilSession indicates a nil session was passed where one is required.
	ErrNilSession = errors.New("session.nil")
)
