package lifecycle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/identity/gotrue"
	"github.com/dmitrymomot/sessionkit/pkg/lifecycle"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/storage"
)

func TestInFlightRefreshCannotUndoSignOut(t *testing.T) {
	t.Parallel()

	refreshEntered := make(chan struct{})
	releaseRefresh := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		refresh := "refresh-1"
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			close(refreshEntered)
			<-releaseRefresh
			refresh = "refresh-2"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + refresh,
			"refresh_token": refresh,
			"token_type":    "bearer",
			"expires_in":    3600,
			"user":          map[string]string{"id": "user-1", "email": "a@example.com"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := gotrue.New(gotrue.Config{URL: srv.URL, AnonKey: "anon", HTTPTimeout: 2 * time.Second},
		gotrue.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mem := storage.NewMemoryStorage()
	metrics := lifecycle.NewMetrics(prometheus.NewRegistry())
	m, err := lifecycle.New(client, session.NewStore(mem),
		lifecycle.WithLogger(logger.Discard()),
		lifecycle.WithMetrics(metrics),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	_, err = m.SignIn(ctx, validCreds)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := m.Refresh(ctx)
		errCh <- err
	}()
	select {
	case <-refreshEntered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh request did not reach the server")
	}

	require.NoError(t, m.SignOut(ctx))
	close(releaseRefresh)

	assert.ErrorIs(t, <-errCh, identity.ErrNoSession)
	assert.Never(t, func() bool { return m.CurrentState().Session != nil }, 200*time.Millisecond, 10*time.Millisecond)
	assert.Nil(t, client.Session())
	assert.Zero(t, mem.Len())
}
