package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/requestid"
)

const maxResponseBody = 1 << 20

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	bearer string
}

// do sends req and decodes a 2xx JSON body into out (when non-nil).
// Transport failures wrap identity.ErrUnavailable; other non-2xx answers are
// returned as *APIError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID, ok := requestid.FromContext(ctx)
	if !ok {
		requestID = requestid.New()
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestid.Header, requestID)
	httpReq.Header.Set("User-Agent", "sessionkit-gotrue/1.0")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(identity.ErrUnavailable, ctxErr)
		}
		return errors.Join(identity.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return errors.Join(identity.ErrUnavailable, err)
	}

	c.logger.DebugContext(ctx, "auth request",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Join(ErrInvalidResponse, err)
	}
	return nil
}
