package gotrue

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// Client talks to a GoTrue server and holds the current session.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
	now     func() time.Time

	autoRefresh   bool
	refreshTick   time.Duration
	refreshMargin time.Duration

	mu      sync.Mutex
	current *session.Session
	// epoch changes whenever current is replaced by another session or
	// dropped. Token exchanges install their result only if it has not.
	epoch uint64

	listeners identity.Listeners

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now for expiry computations.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New validates cfg and returns a client. The auto refresh loop starts
// immediately when cfg.AutoRefresh is set; stop it with Close.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := cfg.endpoint()
	if err != nil {
		return nil, err
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: base,
		apiKey:  cfg.AnonKey,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:        slog.Default(),
		now:           time.Now,
		autoRefresh:   cfg.AutoRefresh && cfg.RefreshTick > 0,
		refreshTick:   cfg.RefreshTick,
		refreshMargin: cfg.RefreshMargin,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("identity.gotrue"))

	if c.autoRefresh {
		go c.refreshLoop()
	} else {
		close(c.done)
	}
	return c, nil
}

// Session returns the held session, which may be expired.
func (c *Client) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Client) snapshot() (*session.Session, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.epoch
}

func (c *Client) setSession(s *session.Session) {
	c.mu.Lock()
	c.current = s
	c.epoch++
	c.mu.Unlock()
}

// installSession replaces the held session with s unless it changed since
// epoch was read.
func (c *Client) installSession(epoch uint64, s *session.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.current = s
	c.epoch++
	return true
}

// dropSession clears the held session if it is still held.
func (c *Client) dropSession(held *session.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != held {
		return false
	}
	c.current = nil
	c.epoch++
	return true
}

func (c *Client) Subscribe(fn identity.Listener) func() {
	return c.listeners.Add(fn)
}

// Restore adopts a locally persisted session without contacting the server.
// GetCurrentSession confirms it afterwards.
func (c *Client) Restore(_ context.Context, s *session.Session) error {
	if err := session.WellFormed(s); err != nil {
		return err
	}
	c.setSession(s)
	return nil
}

// GetCurrentSession confirms the held session with the server. Without a
// session it probes /health so an unreachable server is reported as an
// error rather than as "signed out".
func (c *Client) GetCurrentSession(ctx context.Context) (*session.Session, error) {
	held := c.Session()
	if held == nil {
		if err := c.do(ctx, request{method: http.MethodGet, path: "/health"}, nil); err != nil {
			return nil, c.unavailable(err)
		}
		return nil, nil
	}

	if !session.IsLiveAt(held, c.now()) {
		if held.Credentials.RefreshToken == "" {
			c.dropSession(held)
			return nil, nil
		}
		refreshed, err := c.Refresh(ctx)
		switch {
		case errors.Is(err, identity.ErrSessionRevoked), errors.Is(err, identity.ErrNoSession):
			return nil, nil
		case err != nil:
			return nil, err
		}
		held = refreshed
	}

	var user userResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "/user", bearer: held.Credentials.AccessToken}, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			c.logger.InfoContext(ctx, "server rejected held session", logger.SubjectID(held.SubjectID))
			c.dropSession(held)
			return nil, nil
		}
		return nil, c.unavailable(err)
	}

	if user.Email != "" && user.Email != held.Email {
		updated := held.WithEmail(user.Email)
		c.mu.Lock()
		if c.current == held {
			c.current = updated
		}
		c.mu.Unlock()
		c.listeners.Emit(identity.Event{Kind: identity.EventUserUpdated, Session: updated})
		held = updated
	}
	return held, nil
}

// SignIn exchanges email and password for a session. When the held session
// changes while the request is in flight (a concurrent sign-out), the new
// session is discarded and identity.ErrNoSession is returned.
func (c *Client) SignIn(ctx context.Context, creds identity.Credentials) (*session.Session, error) {
	_, epoch := c.snapshot()

	var tr tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": creds.Email, "password": creds.Password},
	}, &tr)
	if err != nil {
		return nil, classify(err, grantPassword)
	}

	s, err := sessionFromToken(tr, c.now())
	if err != nil {
		return nil, err
	}
	if !c.installSession(epoch, s) {
		c.logger.InfoContext(ctx, "session changed during sign-in, discarding result", logger.SubjectID(s.SubjectID))
		return nil, identity.ErrNoSession
	}
	c.listeners.Emit(identity.Event{Kind: identity.EventSignedIn, Session: s})
	return s, nil
}

// SignUp registers a new account. The held session is not changed.
func (c *Client) SignUp(ctx context.Context, creds identity.Credentials) (identity.SignUpResult, error) {
	var resp signUpResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/signup",
		body:   map[string]string{"email": creds.Email, "password": creds.Password},
	}, &resp)
	if err != nil {
		return identity.SignUpResult{}, classify(err, grantNone)
	}

	if resp.AccessToken != "" {
		s, err := sessionFromToken(resp.tokenResponse, c.now())
		if err != nil {
			return identity.SignUpResult{}, err
		}
		return identity.SignUpResult{SubjectID: s.SubjectID, Session: s}, nil
	}

	subject := resp.ID
	if subject == "" && resp.User != nil {
		subject = resp.User.ID
	}
	return identity.SignUpResult{SubjectID: subject, PendingConfirmation: true}, nil
}

// SignOut revokes the held session. The session is dropped locally and
// EventSignedOut is emitted whatever the server answers.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	held := c.current
	c.current = nil
	c.epoch++
	c.mu.Unlock()

	var err error
	if held != nil {
		err = c.do(ctx, request{
			method: http.MethodPost,
			path:   "/logout",
			bearer: held.Credentials.AccessToken,
		}, nil)
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized ||
			apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusNotFound) {
			err = nil
		}
		err = classify(err, grantNone)
	}

	c.listeners.Emit(identity.Event{Kind: identity.EventSignedOut})
	return err
}

// Refresh exchanges the refresh token of the held session. A revoked token
// ends the session and emits EventSignedOut. When the held session is
// replaced or dropped while the request is in flight, the result is
// discarded and identity.ErrNoSession is returned.
func (c *Client) Refresh(ctx context.Context) (*session.Session, error) {
	held, epoch := c.snapshot()
	if held == nil || held.Credentials.RefreshToken == "" {
		return nil, identity.ErrNoSession
	}

	var tr tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": held.Credentials.RefreshToken},
	}, &tr)
	if err != nil {
		err = classify(err, grantRefresh)
		if errors.Is(err, identity.ErrSessionRevoked) && c.dropSession(held) {
			c.listeners.Emit(identity.Event{Kind: identity.EventSignedOut})
		}
		return nil, err
	}

	s, err := sessionFromToken(tr, c.now())
	if err != nil {
		return nil, err
	}
	if s.Email == "" {
		s = s.WithEmail(held.Email)
	}
	if !c.installSession(epoch, s) {
		c.logger.InfoContext(ctx, "session changed during refresh, discarding result", logger.SubjectID(held.SubjectID))
		return nil, identity.ErrNoSession
	}
	c.listeners.Emit(identity.Event{Kind: identity.EventTokenRefreshed, Session: s})
	return s, nil
}

// ResendVerification re-sends the sign-up confirmation mail to email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/resend",
		body:   map[string]string{"type": "signup", "email": email},
	}, nil)
	return classify(err, grantNone)
}

// Close stops the auto refresh loop. It does not sign out.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
	return nil
}

// unavailable reports any failure to reach or understand the server as
// identity.ErrUnavailable.
func (c *Client) unavailable(err error) error {
	if errors.Is(err, identity.ErrUnavailable) {
		return err
	}
	return errors.Join(identity.ErrUnavailable, err)
}

var (
	_ identity.Backend              = (*Client)(nil)
	_ identity.Restorer             = (*Client)(nil)
	_ identity.Refresher            = (*Client)(nil)
	_ identity.VerificationResender = (*Client)(nil)
)
