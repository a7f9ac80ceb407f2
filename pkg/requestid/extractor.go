package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// LoggerExtractor adds request_id to records logged with a context that
// carries one.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("request_id", id), true
	}
}
