package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// SubjectID records the authenticated principal. Empty ids are dropped.
func SubjectID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subject_id", id)
}

func Generation(gen uint64) slog.Attr {
	return slog.Uint64("generation", gen)
}

func Phase(name string) slog.Attr {
	return slog.String("phase", name)
}

func Key(key string) slog.Attr {
	return slog.String("key", key)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// ExpiresAt records an absolute expiry in RFC 3339. Zero times are dropped.
func ExpiresAt(t time.Time) slog.Attr {
	if t.IsZero() {
		return slog.Attr{}
	}
	return slog.String("expires_at", t.UTC().Format(time.RFC3339))
}
