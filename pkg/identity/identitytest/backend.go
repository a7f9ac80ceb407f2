// Package identitytest provides a scriptable in-memory identity.Backend.
package identitytest

import (
	"context"
	"sync"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// Backend records every call and answers from preset results. It implements
// identity.Backend, identity.Restorer, identity.Refresher and
// identity.VerificationResender.
type Backend struct {
	mu sync.Mutex

	current    *session.Session
	currentErr error

	signIn    *session.Session
	signInErr error

	signUp    identity.SignUpResult
	signUpErr error

	signOutErr    error
	emitOnSignOut bool

	refresh    *session.Session
	refreshErr error

	restoreErr error
	restored   []*session.Session

	resendErr error
	resent    []string

	beforeGetCurrent func(ctx context.Context)

	calls     []string
	listeners identity.Listeners
}

func New() *Backend {
	return &Backend{}
}

// SetCurrent sets what GetCurrentSession returns.
func (b *Backend) SetCurrent(s *session.Session, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current, b.currentErr = s, err
}

// SetSignIn sets what SignIn returns. A successful SignIn also becomes the
// current session.
func (b *Backend) SetSignIn(s *session.Session, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signIn, b.signInErr = s, err
}

func (b *Backend) SetSignUp(res identity.SignUpResult, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signUp, b.signUpErr = res, err
}

func (b *Backend) SetSignOutErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signOutErr = err
}

// EmitOnSignOut makes SignOut deliver EventSignedOut synchronously, the way
// many client libraries do.
func (b *Backend) EmitOnSignOut(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitOnSignOut = v
}

func (b *Backend) SetRefresh(s *session.Session, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh, b.refreshErr = s, err
}

func (b *Backend) SetRestoreErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restoreErr = err
}

func (b *Backend) SetResendErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resendErr = err
}

// BeforeGetCurrent installs a hook run at the start of GetCurrentSession.
func (b *Backend) BeforeGetCurrent(fn func(ctx context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.beforeGetCurrent = fn
}

// Emit delivers ev to subscribers on the calling goroutine.
func (b *Backend) Emit(ev identity.Event) {
	b.listeners.Emit(ev)
}

// Calls returns the names of the methods called so far, in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Restored returns the sessions passed to Restore.
func (b *Backend) Restored() []*session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*session.Session(nil), b.restored...)
}

// Resent returns the addresses passed to ResendVerification.
func (b *Backend) Resent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.resent...)
}

// Subscribers returns the number of active subscriptions.
func (b *Backend) Subscribers() int {
	return b.listeners.Len()
}

func (b *Backend) GetCurrentSession(ctx context.Context) (*session.Session, error) {
	b.mu.Lock()
	b.calls = append(b.calls, "GetCurrentSession")
	hook := b.beforeGetCurrent
	b.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.currentErr
}

func (b *Backend) SignIn(_ context.Context, _ identity.Credentials) (*session.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "SignIn")
	if b.signInErr != nil {
		return nil, b.signInErr
	}
	b.current, b.currentErr = b.signIn, nil
	return b.signIn, nil
}

func (b *Backend) SignUp(_ context.Context, _ identity.Credentials) (identity.SignUpResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "SignUp")
	return b.signUp, b.signUpErr
}

func (b *Backend) SignOut(_ context.Context) error {
	b.mu.Lock()
	b.calls = append(b.calls, "SignOut")
	b.current = nil
	err, emit := b.signOutErr, b.emitOnSignOut
	b.mu.Unlock()

	if emit {
		b.listeners.Emit(identity.Event{Kind: identity.EventSignedOut})
	}
	return err
}

func (b *Backend) Subscribe(fn identity.Listener) func() {
	b.mu.Lock()
	b.calls = append(b.calls, "Subscribe")
	b.mu.Unlock()
	return b.listeners.Add(fn)
}

func (b *Backend) Restore(_ context.Context, s *session.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "Restore")
	b.restored = append(b.restored, s)
	return b.restoreErr
}

func (b *Backend) Refresh(_ context.Context) (*session.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "Refresh")
	if b.refreshErr != nil {
		return nil, b.refreshErr
	}
	b.current = b.refresh
	return b.refresh, nil
}

func (b *Backend) ResendVerification(_ context.Context, email string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "ResendVerification")
	b.resent = append(b.resent, email)
	return b.resendErr
}

var (
	_ identity.Backend              = (*Backend)(nil)
	_ identity.Restorer             = (*Backend)(nil)
	_ identity.Refresher            = (*Backend)(nil)
	_ identity.VerificationResender = (*Backend)(nil)
)
