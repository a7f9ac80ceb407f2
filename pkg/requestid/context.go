package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the stored id, if any.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// New returns a fresh random id.
func New() string {
	return uuid.NewString()
}

// Ensure returns ctx unchanged when it already carries an id, otherwise a
// child context with a new one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := New()
	return WithContext(ctx, id), id
}
