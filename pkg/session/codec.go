package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

const recordVersion = 1

type record struct {
	Version     int             `json:"v"`
	SubjectID   string          `json:"subject_id"`
	Email       string          `json:"email,omitempty"`
	Credentials Credentials     `json:"credentials"`
	ExpiresAt   json.RawMessage `json:"expires_at"`
}

// Encode serializes s into its persisted record form. Only well-formed
// sessions are encoded.
func Encode(s *Session) (string, error) {
	if err := WellFormed(s); err != nil {
		return "", err
	}
	data, err := json.Marshal(record{
		Version:     recordVersion,
		SubjectID:   s.SubjectID,
		Email:       s.Email,
		Credentials: s.Credentials,
		ExpiresAt:   json.RawMessage(strconv.FormatInt(s.ExpiresAt.Unix(), 10)),
	})
	if err != nil {
		return "", errors.Join(ErrMalformedRecord, err)
	}
	return string(data), nil
}

// Decode parses a persisted record. The result is well-formed but may be
// expired.
func Decode(raw string) (*Session, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, errors.Join(ErrMalformedRecord, err)
	}
	if rec.Version != recordVersion {
		return nil, ErrUnsupportedVersion
	}

	expiresAt, err := parseExpiry(rec.ExpiresAt)
	if err != nil {
		return nil, err
	}

	s := &Session{
		SubjectID:   rec.SubjectID,
		Email:       rec.Email,
		Credentials: rec.Credentials,
		ExpiresAt:   expiresAt,
	}
	if err := WellFormed(s); err != nil {
		return nil, err
	}
	return s, nil
}

// parseExpiry accepts only a bare JSON number of unix seconds. Fractions are
// truncated.
func parseExpiry(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, ErrMissingExpiry
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return time.Time{}, ErrInvalidExpiry
	}

	num := json.Number(raw)
	if secs, err := num.Int64(); err == nil {
		return time.Unix(secs, 0), nil
	}
	f, err := num.Float64()
	if err != nil {
		return time.Time{}, errors.Join(ErrInvalidExpiry, err)
	}
	// Converting a float outside the int64 range is platform dependent.
	if f >= 1<<63 || f < -(1<<63) {
		return time.Time{}, ErrInvalidExpiry
	}
	return time.Unix(int64(f), 0), nil
}
