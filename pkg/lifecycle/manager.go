package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/sessioncache"
)

// Manager runs the session lifecycle. It is safe for concurrent use.
type Manager struct {
	backend   identity.Backend
	store     *session.Store
	cache     *sessioncache.Cache
	validator *session.Validator
	logger    *slog.Logger
	metrics   *Metrics

	// startMu serializes Start calls.
	startMu sync.Mutex

	// mu guards phase and sub, and is held for every commit.
	mu    sync.Mutex
	phase Phase
	sub   *subscriber
}

// New creates a manager in PhaseInitializing. Call Start before any other
// operation.
func New(backend identity.Backend, store *session.Store, opts ...Option) (*Manager, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if store == nil {
		return nil, ErrNilStore
	}

	m := &Manager{
		backend:   backend,
		store:     store,
		cache:     sessioncache.New(),
		validator: session.NewValidator(),
		logger:    slog.Default(),
		phase:     PhaseInitializing,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("lifecycle"))
	m.metrics.phase(m.phase)
	return m, nil
}

// Start runs startup reconciliation and subscribes to backend events.
func (m *Manager) Start(ctx context.Context) error {
	defer m.cache.Flush()
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if err := m.beginStart(); err != nil {
		return err
	}

	started := time.Now()
	defer func() { m.metrics.startup(time.Since(started)) }()

	if local, ok := m.store.Read(ctx); ok {
		if !m.validator.IsLive(local) {
			m.logger.DebugContext(ctx, "discarding persisted session that is not live",
				logger.SubjectID(local.SubjectID), logger.ExpiresAt(local.ExpiresAt))
			m.clearStore(ctx)
		} else if r, ok := m.backend.(identity.Restorer); ok {
			if err := r.Restore(ctx, local); err != nil {
				m.logger.WarnContext(ctx, "backend did not accept persisted session", logger.Error(err))
			}
		}
	}

	remote, err := m.reconcile(ctx)
	if err != nil {
		connErr := fmt.Errorf("%w: %w", ErrConnectivity, err)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.phase == PhaseClosed {
			return ErrClosed
		}
		m.setPhaseLocked(PhaseFailed)
		m.cache.Set(m.cache.Stamp(), sessioncache.Failed(connErr))
		m.metrics.operation("start", connErr)
		m.logger.ErrorContext(ctx, "identity backend unreachable", logger.Error(err))
		return connErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseClosed {
		return ErrClosed
	}
	m.commitLocked(ctx, m.cache.Stamp(), remote)
	m.setPhaseLocked(PhaseReady)
	if m.sub == nil {
		m.sub = newSubscriber(m.backend, m.cache.Stamp, m.handleEvent, m.logger)
	}
	m.metrics.operation("start", nil)

	attrs := []any{logger.Phase(m.phase.String())}
	if remote != nil {
		attrs = append(attrs, logger.SubjectID(remote.SubjectID))
	}
	m.logger.InfoContext(ctx, "session manager ready", attrs...)
	return nil
}

func (m *Manager) beginStart() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhaseReady:
		return ErrAlreadyStarted
	case PhaseClosed:
		return ErrClosed
	case PhaseFailed:
		m.setPhaseLocked(PhaseInitializing)
		m.cache.Set(m.cache.Stamp(), sessioncache.State{Loading: true})
	}
	return nil
}

// reconcile asks the backend for its session and signs out one that is no
// longer live. The returned session is nil or live.
func (m *Manager) reconcile(ctx context.Context) (*session.Session, error) {
	remote, err := m.backend.GetCurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if remote == nil || m.validator.IsLive(remote) {
		return remote, nil
	}

	m.logger.InfoContext(ctx, "backend session expired, signing out",
		logger.SubjectID(remote.SubjectID), logger.ExpiresAt(remote.ExpiresAt))
	if err := m.backend.SignOut(ctx); err != nil {
		m.logger.WarnContext(ctx, "backend sign-out of expired session failed", logger.Error(err))
	}
	return nil, nil
}

// SignIn replaces any current session with a new one for creds. The backend
// is signed out first; the backend's sign-in error is returned unchanged.
func (m *Manager) SignIn(ctx context.Context, creds identity.Credentials) (s *session.Session, err error) {
	defer func() { m.metrics.operation("sign_in", err) }()

	if err := m.ensureReady(); err != nil {
		return nil, err
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if err := m.backend.SignOut(ctx); err != nil {
		m.logger.WarnContext(ctx, "sign-out before sign-in failed", logger.Error(err))
	}
	if err := m.commit(ctx, nil); err != nil {
		return nil, err
	}

	s, err = m.backend.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	if !m.validator.IsLive(s) {
		m.logger.WarnContext(ctx, "backend returned a session that is not live")
		if err := m.backend.SignOut(ctx); err != nil {
			m.logger.WarnContext(ctx, "sign-out of rejected session failed", logger.Error(err))
		}
		return nil, ErrSessionRejected
	}

	if err := m.commit(ctx, s); err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "signed in", logger.SubjectID(s.SubjectID))
	return s, nil
}

// SignUp registers a new account. The current session is not touched.
func (m *Manager) SignUp(ctx context.Context, creds identity.Credentials) (res identity.SignUpResult, err error) {
	defer func() { m.metrics.operation("sign_up", err) }()

	if err := m.ensureReady(); err != nil {
		return identity.SignUpResult{}, err
	}
	if err := creds.ValidateForSignUp(); err != nil {
		return identity.SignUpResult{}, err
	}
	return m.backend.SignUp(ctx, creds)
}

// SignOut ends the session. Local state is cleared even when the backend
// call fails; that failure is still returned.
func (m *Manager) SignOut(ctx context.Context) (err error) {
	defer func() { m.metrics.operation("sign_out", err) }()

	if err := m.ensureReady(); err != nil {
		return err
	}

	backendErr := m.backend.SignOut(ctx)
	if backendErr != nil {
		m.logger.WarnContext(ctx, "backend sign-out failed, clearing local session anyway", logger.Error(backendErr))
	}
	if err := m.commit(ctx, nil); err != nil {
		return errors.Join(err, backendErr)
	}
	return backendErr
}

// Refresh exchanges the refresh token for a new session. A revoked token
// ends the local session as well.
func (m *Manager) Refresh(ctx context.Context) (s *session.Session, err error) {
	defer func() { m.metrics.operation("refresh", err) }()

	if err := m.ensureReady(); err != nil {
		return nil, err
	}
	r, ok := m.backend.(identity.Refresher)
	if !ok {
		return nil, ErrRefreshUnsupported
	}

	s, err = r.Refresh(ctx)
	if err != nil {
		if errors.Is(err, identity.ErrSessionRevoked) {
			if cerr := m.commit(ctx, nil); cerr != nil {
				return nil, errors.Join(err, cerr)
			}
		}
		return nil, err
	}
	if !m.validator.IsLive(s) {
		return nil, ErrSessionRejected
	}
	if err := m.commit(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ResendVerification asks the backend to re-send the confirmation mail.
func (m *Manager) ResendVerification(ctx context.Context, email string) (err error) {
	defer func() { m.metrics.operation("resend_verification", err) }()

	if err := m.ensureReady(); err != nil {
		return err
	}
	r, ok := m.backend.(identity.VerificationResender)
	if !ok {
		return ErrResendUnsupported
	}
	if err := identity.ValidateEmail(email); err != nil {
		return err
	}
	return r.ResendVerification(ctx, email)
}

// CurrentState returns the published state. A session in it may have
// expired since it was published; use LiveSession when a usable session is
// required.
func (m *Manager) CurrentState() sessioncache.State {
	return m.cache.Get()
}

// LiveSession returns the published session if it is live right now.
func (m *Manager) LiveSession() (*session.Session, bool) {
	s := m.cache.Get().Session
	if !m.validator.IsLive(s) {
		return nil, false
	}
	return s, true
}

// OnChange registers fn for state changes. See sessioncache.Cache.OnChange.
// fn runs after the manager lock is released and may call other Manager
// methods, except Close: backend events are delivered from the goroutine
// that Close waits for.
func (m *Manager) OnChange(fn func(sessioncache.State)) (cancel func()) {
	return m.cache.OnChange(fn)
}

func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Close releases the backend subscription and waits for pending event
// handling to stop. It does not sign out. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.phase == PhaseClosed {
		m.mu.Unlock()
		return nil
	}
	m.setPhaseLocked(PhaseClosed)
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.stop()
	}
	m.logger.Debug("session manager closed")
	return nil
}

func (m *Manager) ensureReady() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.phase {
	case PhaseReady:
		return nil
	case PhaseClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}
}

// commit stamps a new generation and makes s (nil for signed out) the
// persisted and published session.
func (m *Manager) commit(ctx context.Context, s *session.Session) error {
	defer m.cache.Flush()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseClosed {
		return ErrClosed
	}
	m.commitLocked(ctx, m.cache.Stamp(), s)
	return nil
}

// commitLocked queues the change notification; callers flush the cache
// after releasing m.mu.
func (m *Manager) commitLocked(ctx context.Context, gen uint64, s *session.Session) bool {
	if s == nil {
		m.clearStore(ctx)
	} else if err := m.store.Write(ctx, s); err != nil {
		m.metrics.storageError("write")
		m.logger.WarnContext(ctx, "failed to persist session", logger.Error(err))
	}

	st := sessioncache.Absent()
	if s != nil {
		st = sessioncache.Signed(s)
	}
	if !m.cache.Set(gen, st) {
		return false
	}
	m.metrics.signedIn(s != nil)
	m.logger.DebugContext(ctx, "session state published", logger.Generation(gen))
	return true
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.metrics.storageError("clear")
		m.logger.WarnContext(ctx, "failed to clear persisted session", logger.Error(err))
	}
}

func (m *Manager) setPhaseLocked(p Phase) {
	if !m.phase.canTransition(p) {
		m.logger.Error("unexpected phase transition",
			slog.String("from", m.phase.String()), slog.String("to", p.String()),
			logger.Error(ErrInvalidTransition))
	}
	m.phase = p
	m.metrics.phase(p)
}
