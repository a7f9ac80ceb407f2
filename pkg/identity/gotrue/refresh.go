package gotrue

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

func (c *Client) refreshLoop() {
	defer close(c.done)

	ticker := time.NewTicker(c.refreshTick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.refreshIfDue()
		}
	}
}

// refreshIfDue refreshes the held session when it expires within the
// refresh margin.
func (c *Client) refreshIfDue() {
	held := c.Session()
	if held == nil || held.Credentials.RefreshToken == "" {
		return
	}
	if held.TTL(c.now()) > c.refreshMargin {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.http.Timeout+time.Second)
	defer cancel()
	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ctx = logger.WithOperationID(ctx, "auto-refresh")
	if _, err := c.Refresh(ctx); err != nil {
		switch {
		case errors.Is(err, identity.ErrSessionRevoked):
			c.logger.InfoContext(ctx, "refresh token revoked, session ended", logger.SubjectID(held.SubjectID))
		case errors.Is(err, identity.ErrNoSession):
		default:
			c.logger.WarnContext(ctx, "auto refresh failed, retrying on next tick", logger.Error(err))
		}
		return
	}
	c.logger.DebugContext(ctx, "session refreshed", logger.SubjectID(held.SubjectID))
}
