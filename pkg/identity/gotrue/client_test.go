package gotrue_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/identity/gotrue"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/requestid"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

const anonKey = "anon-key"

var now = time.Unix(1_700_000_000, 0)

func signToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type fakeServer struct {
	t  *testing.T
	mu sync.Mutex

	routes map[string]http.HandlerFunc
	hits   map[string]int
	last   map[string]*http.Request
	bodies map[string]map[string]string
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{
		t:      t,
		routes: map[string]http.HandlerFunc{},
		hits:   map[string]int{},
		last:   map[string]*http.Request{},
		bodies: map[string]map[string]string{},
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func routeKey(method, path, grant string) string {
	if grant != "" {
		return method + " " + path + "?" + grant
	}
	return method + " " + path
}

func (fs *fakeServer) handle(method, path, grant string, h http.HandlerFunc) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.routes[routeKey(method, path, grant)] = h
}

func (fs *fakeServer) hitCount(method, path, grant string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits[routeKey(method, path, grant)]
}

func (fs *fakeServer) lastRequest(method, path, grant string) (*http.Request, map[string]string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	key := routeKey(method, path, grant)
	return fs.last[key], fs.bodies[key]
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	key := routeKey(r.Method, r.URL.Path, r.URL.Query().Get("grant_type"))

	var body map[string]string
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	fs.mu.Lock()
	h, ok := fs.routes[key]
	fs.hits[key]++
	fs.last[key] = r
	fs.bodies[key] = body
	fs.mu.Unlock()

	if r.Header.Get("apikey") != anonKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "no api key"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"msg": "not found: " + key})
		return
	}
	h(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenBody(t *testing.T, sub, email string, exp time.Time, refresh string) map[string]any {
	return map[string]any{
		"access_token":  signToken(t, sub, email, exp),
		"token_type":    "bearer",
		"expires_in":    int64(exp.Sub(now).Seconds()),
		"expires_at":    exp.Unix(),
		"refresh_token": refresh,
		"user":          map[string]any{"id": sub, "email": email},
	}
}

func newClient(t *testing.T, srv *httptest.Server, mutate ...func(*gotrue.Config)) *gotrue.Client {
	t.Helper()
	cfg := gotrue.Config{URL: srv.URL, AnonKey: anonKey, HTTPTimeout: 2 * time.Second}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := gotrue.New(cfg,
		gotrue.WithHTTPClient(srv.Client()),
		gotrue.WithLogger(logger.Discard()),
		gotrue.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type recorder struct {
	mu     sync.Mutex
	events []identity.Event
}

func (r *recorder) listen(ev identity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []identity.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]identity.EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []gotrue.Config{
		{},
		{URL: "ftp://example.com", AnonKey: "k"},
		{URL: "https://", AnonKey: "k"},
		{URL: "https://example.com"},
	} {
		_, err := gotrue.New(cfg)
		assert.ErrorIs(t, err, gotrue.ErrInvalidConfig)
	}
}

func TestGetCurrentSessionWithoutSessionProbesHealth(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	fs.handle(http.MethodGet, "/auth/v1/health", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"name": "GoTrue"})
	})

	s, err := newClient(t, srv).GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 1, fs.hitCount(http.MethodGet, "/auth/v1/health", ""))
}

func TestGetCurrentSessionUnreachable(t *testing.T) {
	t.Parallel()
	_, srv := newFakeServer(t)
	c := newClient(t, srv)
	srv.Close()

	_, err := c.GetCurrentSession(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestGetCurrentSessionServerError(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	fs.handle(http.MethodGet, "/auth/v1/health", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"msg": "down"})
	})

	_, err := newClient(t, srv).GetCurrentSession(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	exp := now.Add(time.Hour)
	fs.handle(http.MethodPost, "/auth/v1/token", "password", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", exp, "refresh-1"))
	})

	c := newClient(t, srv)
	rec := &recorder{}
	c.Subscribe(rec.listen)

	s, err := c.SignIn(context.Background(), identity.Credentials{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.SubjectID)
	assert.Equal(t, "a@example.com", s.Email)
	assert.Equal(t, "refresh-1", s.Credentials.RefreshToken)
	assert.Equal(t, exp.Unix(), s.ExpiresAt.Unix())
	assert.Same(t, s, c.Session())
	assert.Equal(t, []identity.EventKind{identity.EventSignedIn}, rec.kinds())

	req, body := fs.lastRequest(http.MethodPost, "/auth/v1/token", "password")
	require.NotNil(t, req)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.NotEmpty(t, req.Header.Get("X-Request-Id"))
	assert.Equal(t, map[string]string{"email": "a@example.com", "password": "secret"}, body)
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	exp := now.Add(time.Hour)
	fs.handle(http.MethodPost, "/auth/v1/token", "password", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", exp, "refresh-1"))
	})

	ctx := requestid.WithContext(context.Background(), "cli-op-7")
	_, err := newClient(t, srv).SignIn(ctx, identity.Credentials{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	req, _ := fs.lastRequest(http.MethodPost, "/auth/v1/token", "password")
	require.NotNil(t, req)
	assert.Equal(t, "cli-op-7", req.Header.Get(requestid.Header))
}

func TestSignInFallsBackToTokenClaims(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	exp := now.Add(30 * time.Minute)
	fs.handle(http.MethodPost, "/auth/v1/token", "password", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  signToken(t, "claims-user", "c@example.com", exp),
			"refresh_token": "r",
		})
	})

	s, err := newClient(t, srv).SignIn(context.Background(), identity.Credentials{Email: "c@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "claims-user", s.SubjectID)
	assert.Equal(t, "c@example.com", s.Email)
	assert.Equal(t, exp.Unix(), s.ExpiresAt.Unix())
}

func TestSignInErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    map[string]any
		wantErr error
	}{
		{"invalid credentials", http.StatusBadRequest, map[string]any{"error_code": "invalid_credentials", "msg": "Invalid login credentials"}, identity.ErrInvalidCredentials},
		{"legacy invalid grant", http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Invalid login credentials"}, identity.ErrInvalidCredentials},
		{"email not confirmed code", http.StatusBadRequest, map[string]any{"error_code": "email_not_confirmed", "msg": "Email not confirmed"}, identity.ErrEmailNotConfirmed},
		{"email not confirmed legacy", http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Email not confirmed"}, identity.ErrEmailNotConfirmed},
		{"rate limited", http.StatusTooManyRequests, map[string]any{"msg": "slow down"}, identity.ErrRateLimited},
		{"server error", http.StatusBadGateway, nil, identity.ErrUnavailable},
		{"unknown rejection", http.StatusForbidden, map[string]any{"error_code": "signup_disabled"}, identity.ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs, srv := newFakeServer(t)
			fs.handle(http.MethodPost, "/auth/v1/token", "password", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			c := newClient(t, srv)
			_, err := c.SignIn(context.Background(), identity.Credentials{Email: "a@example.com", Password: "x"})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, c.Session())
		})
	}
}

func TestUnknownRejectionIsAPIError(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	fs.handle(http.MethodPost, "/auth/v1/token", "password", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"error_code": "signup_disabled", "msg": "Signups not allowed"})
	})

	_, err := newClient(t, srv).SignIn(context.Background(), identity.Credentials{Email: "a@example.com", Password: "x"})
	var apiErr *gotrue.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "signup_disabled")
	assert.True(t, identity.IsCredentialError(err))
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("pending confirmation", func(t *testing.T) {
		t.Parallel()
		fs, srv := newFakeServer(t)
		fs.handle(http.MethodPost, "/auth/v1/signup", "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": "new-user", "email": "n@example.com", "confirmation_sent_at": "2026-01-01T00:00:00Z"})
		})

		c := newClient(t, srv)
		rec := &recorder{}
		c.Subscribe(rec.listen)

		res, err := c.SignUp(context.Background(), identity.Credentials{Email: "n@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.True(t, res.PendingConfirmation)
		assert.Equal(t, "new-user", res.SubjectID)
		assert.Nil(t, res.Session)
		assert.Nil(t, c.Session())
		assert.Empty(t, rec.kinds())
	})

	t.Run("auto confirmed", func(t *testing.T) {
		t.Parallel()
		fs, srv := newFakeServer(t)
		fs.handle(http.MethodPost, "/auth/v1/signup", "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, tokenBody(t, "new-user", "n@example.com", now.Add(time.Hour), "r"))
		})

		c := newClient(t, srv)
		res, err := c.SignUp(context.Background(), identity.Credentials{Email: "n@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.False(t, res.PendingConfirmation)
		require.NotNil(t, res.Session)
		assert.Equal(t, "new-user", res.SubjectID)
		assert.Nil(t, c.Session(), "registration does not sign in")
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		fs, srv := newFakeServer(t)
		c := newClient(t, srv)

		fs.handle(http.MethodPost, "/auth/v1/signup", "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error_code": "user_already_exists", "msg": "User already registered"})
		})
		_, err := c.SignUp(context.Background(), identity.Credentials{Email: "n@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, identity.ErrUserExists)

		fs.handle(http.MethodPost, "/auth/v1/signup", "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error_code": "weak_password", "msg": "Password should be at least 6 characters"})
		})
		_, err = c.SignUp(context.Background(), identity.Credentials{Email: "n@example.com", Password: "123"})
		assert.ErrorIs(t, err, identity.ErrInvalidInput)
	})
}

func signedInClient(t *testing.T, fs *fakeServer, srv *httptest.Server, exp time.Time, mutate ...func(*gotrue.Config)) *gotrue.Client {
	t.Helper()
	fs.handle(http.MethodPost, "/auth/v1/token", "password", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", exp, "refresh-1"))
	})
	c := newClient(t, srv, mutate...)
	_, err := c.SignIn(context.Background(), identity.Credentials{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)
	return c
}

func TestGetCurrentSessionConfirmsHeldSession(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Hour))
	held := c.Session()

	fs.handle(http.MethodGet, "/auth/v1/user", "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+held.Credentials.AccessToken, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": "user-1", "email": "a@example.com"})
	})

	s, err := c.GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Same(t, held, s)
}

func TestGetCurrentSessionEmitsUserUpdated(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Hour))
	rec := &recorder{}
	c.Subscribe(rec.listen)

	fs.handle(http.MethodGet, "/auth/v1/user", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "user-1", "email": "changed@example.com"})
	})

	s, err := c.GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "changed@example.com", s.Email)
	assert.Equal(t, []identity.EventKind{identity.EventUserUpdated}, rec.kinds())
}

func TestGetCurrentSessionDropsRejectedSession(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Hour))

	fs.handle(http.MethodGet, "/auth/v1/user", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
	})

	s, err := c.GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Nil(t, c.Session())
}

func TestGetCurrentSessionRefreshesExpiredSession(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := newClient(t, srv)
	require.NoError(t, c.Restore(context.Background(), session.New("user-1",
		session.Credentials{AccessToken: "old", RefreshToken: "refresh-1"}, now.Add(-time.Minute))))

	fs.handle(http.MethodPost, "/auth/v1/token", "refresh_token", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", now.Add(time.Hour), "refresh-2"))
	})
	fs.handle(http.MethodGet, "/auth/v1/user", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "user-1", "email": "a@example.com"})
	})

	s, err := c.GetCurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "refresh-2", s.Credentials.RefreshToken)
	assert.True(t, session.IsLiveAt(s, now))
}

func TestGetCurrentSessionExpiredWithoutRefreshToken(t *testing.T) {
	t.Parallel()
	_, srv := newFakeServer(t)
	c := newClient(t, srv)
	require.NoError(t, c.Restore(context.Background(), session.New("user-1",
		session.Credentials{AccessToken: "old"}, now.Add(-time.Minute))))

	s, err := c.GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Nil(t, c.Session())
}

func TestRestoreRejectsIncompleteSession(t *testing.T) {
	t.Parallel()
	_, srv := newFakeServer(t)
	c := newClient(t, srv)

	assert.ErrorIs(t, c.Restore(context.Background(), &session.Session{SubjectID: "u"}), session.ErrMissingAccessToken)
	assert.Nil(t, c.Session())
}

func TestSignOut(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Hour))
	token := c.Session().Credentials.AccessToken
	rec := &recorder{}
	c.Subscribe(rec.listen)

	fs.handle(http.MethodPost, "/auth/v1/logout", "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.SignOut(context.Background()))
	assert.Nil(t, c.Session())
	assert.Equal(t, []identity.EventKind{identity.EventSignedOut}, rec.kinds())

	require.NoError(t, c.SignOut(context.Background()), "signing out twice is fine")
	assert.Equal(t, 1, fs.hitCount(http.MethodPost, "/auth/v1/logout", ""))
}

func TestSignOutDropsSessionOnFailure(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Hour))

	fs.handle(http.MethodPost, "/auth/v1/logout", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, nil)
	})

	err := c.SignOut(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnavailable)
	assert.Nil(t, c.Session())
}

func TestSignOutIgnoresAlreadyRevokedToken(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Hour))

	fs.handle(http.MethodPost, "/auth/v1/logout", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
	})
	assert.NoError(t, c.SignOut(context.Background()))
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Minute))
	rec := &recorder{}
	c.Subscribe(rec.listen)

	fs.handle(http.MethodPost, "/auth/v1/token", "refresh_token", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", now.Add(time.Hour), "refresh-2"))
	})

	s, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", s.Credentials.RefreshToken)
	assert.Same(t, s, c.Session())
	assert.Equal(t, []identity.EventKind{identity.EventTokenRefreshed}, rec.kinds())

	_, body := fs.lastRequest(http.MethodPost, "/auth/v1/token", "refresh_token")
	assert.Equal(t, "refresh-1", body["refresh_token"])
}

func TestRefreshRevoked(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Minute))
	rec := &recorder{}
	c.Subscribe(rec.listen)

	fs.handle(http.MethodPost, "/auth/v1/token", "refresh_token", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "refresh_token_not_found", "msg": "Invalid Refresh Token"})
	})

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, identity.ErrSessionRevoked)
	assert.False(t, identity.IsCredentialError(err))
	assert.Nil(t, c.Session())
	assert.Equal(t, []identity.EventKind{identity.EventSignedOut}, rec.kinds())
}

func TestRefreshWithoutSession(t *testing.T) {
	t.Parallel()
	_, srv := newFakeServer(t)

	_, err := newClient(t, srv).Refresh(context.Background())
	assert.ErrorIs(t, err, identity.ErrNoSession)
}

// gate holds a handler until released so a test can act while the request
// is in flight.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		close(g.entered)
		<-g.release
		h(w, r)
	}
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("request did not reach the server")
	}
}

func TestRefreshDiscardedAfterConcurrentSignOut(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Minute))
	rec := &recorder{}
	c.Subscribe(rec.listen)

	g := newGate()
	fs.handle(http.MethodPost, "/auth/v1/token", "refresh_token", g.wrap(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", now.Add(time.Hour), "refresh-2"))
	}))
	fs.handle(http.MethodPost, "/auth/v1/logout", "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Refresh(context.Background())
		errCh <- err
	}()
	g.waitEntered(t)

	require.NoError(t, c.SignOut(context.Background()))
	close(g.release)

	assert.ErrorIs(t, <-errCh, identity.ErrNoSession)
	assert.Nil(t, c.Session())
	assert.Equal(t, []identity.EventKind{identity.EventSignedOut}, rec.kinds())
}

func TestSignInDiscardedAfterConcurrentSignOut(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := newClient(t, srv)
	rec := &recorder{}
	c.Subscribe(rec.listen)

	g := newGate()
	fs.handle(http.MethodPost, "/auth/v1/token", "password", g.wrap(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", now.Add(time.Hour), "refresh-1"))
	}))

	errCh := make(chan error, 1)
	go func() {
		_, err := c.SignIn(context.Background(), identity.Credentials{Email: "a@example.com", Password: "secret"})
		errCh <- err
	}()
	g.waitEntered(t)

	require.NoError(t, c.SignOut(context.Background()))
	close(g.release)

	assert.ErrorIs(t, <-errCh, identity.ErrNoSession)
	assert.Nil(t, c.Session())
	assert.Equal(t, []identity.EventKind{identity.EventSignedOut}, rec.kinds())
}

func TestResendVerification(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	fs.handle(http.MethodPost, "/auth/v1/resend", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	c := newClient(t, srv)
	require.NoError(t, c.ResendVerification(context.Background(), "a@example.com"))
	_, body := fs.lastRequest(http.MethodPost, "/auth/v1/resend", "")
	assert.Equal(t, map[string]string{"type": "signup", "email": "a@example.com"}, body)

	fs.handle(http.MethodPost, "/auth/v1/resend", "", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error_code": "over_email_send_rate_limit"})
	})
	assert.ErrorIs(t, c.ResendVerification(context.Background(), "a@example.com"), identity.ErrRateLimited)
}

func TestAutoRefresh(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Minute), func(cfg *gotrue.Config) {
		cfg.AutoRefresh = true
		cfg.RefreshTick = 10 * time.Millisecond
		cfg.RefreshMargin = 2 * time.Minute
	})

	refreshed := make(chan identity.Event, 1)
	c.Subscribe(func(ev identity.Event) {
		if ev.Kind == identity.EventTokenRefreshed {
			select {
			case refreshed <- ev:
			default:
			}
		}
	})
	fs.handle(http.MethodPost, "/auth/v1/token", "refresh_token", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody(t, "user-1", "a@example.com", now.Add(time.Hour), "refresh-2"))
	})

	select {
	case ev := <-refreshed:
		assert.Equal(t, "refresh-2", ev.Session.Credentials.RefreshToken)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not refreshed")
	}
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestAutoRefreshSkipsFreshSession(t *testing.T) {
	t.Parallel()
	fs, srv := newFakeServer(t)
	c := signedInClient(t, fs, srv, now.Add(time.Hour), func(cfg *gotrue.Config) {
		cfg.AutoRefresh = true
		cfg.RefreshTick = 5 * time.Millisecond
		cfg.RefreshMargin = time.Minute
	})

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, c.Close())
	assert.Zero(t, fs.hitCount(http.MethodPost, "/auth/v1/token", "refresh_token"))
}
