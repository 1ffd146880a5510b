// Package authclient owns the operator's session on the console side: it
// bootstraps it from storage, refreshes it single-flight, decorates outgoing
// API calls with the access token and tears the session down when the
// backend says it is no longer valid.
package authclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-admin-panel/internal/event"
	"go-admin-panel/internal/metrics"
	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
	"go-admin-panel/internal/session"
)

type State int

const (
	StateBootstrapping State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Principal is the resolved operator together with their role.
type Principal struct {
	User model.User      `json:"user"`
	Role permission.Role `json:"role"`
}

// Backend is the slice of the e-commerce API the manager depends on.
type Backend interface {
	Login(ctx context.Context, email string, password string) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetRole(ctx context.Context, id int64) (permission.Role, error)
}

type Options struct {
	Catalogue      *permission.Catalogue
	Bus            event.Publisher
	Metrics        *metrics.Auth
	RefreshTimeout time.Duration
	LookupTimeout  time.Duration
	LoginPath      string
	Now            func() time.Time
}

// Manager is the single writer of the session. Readers (interceptors, the
// route guard, the permission model) only take the read lock.
type Manager struct {
	store   session.Store
	backend Backend
	opts    Options

	// writeMu serialises every session mutation, including the storage I/O.
	writeMu sync.Mutex

	mu        sync.RWMutex
	sess      session.Session
	state     State
	principal *Principal
	epoch     uint64

	refreshMu  sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome

	// replayTail is released by the last caller to join the current round.
	replayTail <-chan struct{}
}

func NewManager(store session.Store, backend Backend, opts Options) *Manager {
	if opts.Catalogue == nil {
		opts.Catalogue = permission.DefaultCatalogue()
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		store:   store,
		backend: backend,
		opts:    opts,
		state:   StateBootstrapping,
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Principal() (Principal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.principal == nil || m.state != StateAuthenticated {
		return Principal{}, false
	}
	return *m.principal, true
}

// CurrentRole implements permission.RoleSource.
func (m *Manager) CurrentRole() (permission.Role, bool) {
	p, ok := m.Principal()
	return p.Role, ok
}

// Session returns a consistent copy of the current token pair.
func (m *Manager) Session() session.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

func (m *Manager) snapshot() (session.Session, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, m.epoch
}

// Bootstrap restores the persisted session. It ends either Authenticated
// with a resolved principal or Unauthenticated with storage cleared.
func (m *Manager) Bootstrap(ctx context.Context) State {
	m.writeMu.Lock()
	m.mu.Lock()
	m.state = StateBootstrapping
	m.principal = nil
	m.mu.Unlock()
	m.writeMu.Unlock()

	stored, err := m.store.Load(ctx)
	if err != nil {
		slog.Warn("persisted session unreadable", "error", err)
		m.signOut(ctx, "session_unreadable")
		return m.State()
	}

	if stored.AccessToken == "" {
		m.signOut(ctx, "no_access_token")
		return m.State()
	}

	claims, err := DecodeToken(stored.AccessToken)
	if err != nil {
		slog.Info("persisted access token rejected", "error", err)
		m.signOut(ctx, "token_decode")
		return m.State()
	}

	epoch := m.adopt(stored)

	if !claims.Expired(m.opts.Now()) {
		_ = m.resolve(ctx, claims.UserID, epoch)
		return m.State()
	}

	if stored.RefreshToken == "" {
		m.signOut(ctx, "no_refresh_token")
		return m.State()
	}

	token, err := m.Refresh(ctx)
	if err != nil {
		return m.State()
	}

	claims, err = DecodeToken(token)
	if err != nil {
		m.signOut(ctx, "token_decode")
		return m.State()
	}

	_ = m.resolve(ctx, claims.UserID, epoch)
	return m.State()
}

// Login exchanges credentials for a token pair and resolves the operator.
func (m *Manager) Login(ctx context.Context, email string, password string) (Principal, error) {
	pair, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return Principal{}, err
	}
	if !pair.Valid() {
		return Principal{}, fmt.Errorf("%w: incomplete token pair", model.ErrTokenDecode)
	}

	claims, err := DecodeToken(pair.AccessToken)
	if err != nil {
		return Principal{}, err
	}

	sess := session.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}

	m.writeMu.Lock()
	if err := m.store.Save(context.WithoutCancel(ctx), sess); err != nil {
		m.writeMu.Unlock()
		return Principal{}, fmt.Errorf("persist session: %w", err)
	}
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.sess = sess
	m.principal = nil
	m.state = StateBootstrapping
	m.mu.Unlock()
	m.writeMu.Unlock()

	m.publish(event.TypeStateChanged, claims.UserID, map[string]any{"state": StateBootstrapping.String()})

	if err := m.resolve(ctx, claims.UserID, epoch); err != nil {
		return Principal{}, err
	}

	p, ok := m.Principal()
	if !ok {
		return Principal{}, model.ErrUnauthenticated
	}
	return p, nil
}

// SignOut clears the session. Calling it while signed out is a no-op.
func (m *Manager) SignOut(ctx context.Context) {
	m.signOut(ctx, "user")
}

// adopt installs a token pair read from storage without writing it back.
func (m *Manager) adopt(sess session.Session) uint64 {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.sess = sess
	return m.epoch
}

// resolve looks up the user and role for id and, if the session was not
// replaced meanwhile, marks the manager Authenticated. Any failure signs out.
func (m *Manager) resolve(ctx context.Context, userID int64, epoch uint64) error {
	lookupCtx, cancel := withTimeout(ctx, m.opts.LookupTimeout)
	defer cancel()

	user, err := m.backend.GetUser(lookupCtx, userID)
	if err != nil {
		slog.Warn("user lookup failed", "user_id", userID, "error", err)
		m.signOutIf(ctx, epoch, "lookup_failed")
		return fmt.Errorf("%w: %w", model.ErrLookupFailed, err)
	}

	role, err := m.backend.GetRole(lookupCtx, user.RoleID)
	if err != nil {
		slog.Warn("role lookup failed", "user_id", userID, "role_id", user.RoleID, "error", err)
		m.signOutIf(ctx, epoch, "lookup_failed")
		return fmt.Errorf("%w: %w", model.ErrLookupFailed, err)
	}

	if err := m.opts.Catalogue.ValidateRole(role); err != nil {
		slog.Error("role does not match the permission catalogue", "role_id", role.ID, "error", err)
		m.signOutIf(ctx, epoch, "role_invalid")
		return fmt.Errorf("%w: %w", model.ErrLookupFailed, err)
	}

	m.writeMu.Lock()
	m.mu.Lock()
	if m.epoch != epoch || m.sess.AccessToken == "" {
		m.mu.Unlock()
		m.writeMu.Unlock()
		return model.ErrUnauthenticated
	}
	m.principal = &Principal{User: user, Role: role}
	m.state = StateAuthenticated
	m.mu.Unlock()
	m.writeMu.Unlock()

	slog.Info("operator authenticated", "user_id", user.ID, "role", role.Name)
	m.publish(event.TypeStateChanged, user.ID, map[string]any{"state": StateAuthenticated.String()})
	return nil
}

func (m *Manager) signOut(ctx context.Context, reason string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.signOutLocked(ctx, reason)
}

// signOutIf signs out only if the session is still the one identified by
// epoch, so a stale failure cannot end a newer session.
func (m *Manager) signOutIf(ctx context.Context, epoch uint64, reason string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	current := m.epoch
	m.mu.RUnlock()
	if current != epoch {
		return
	}
	m.signOutLocked(ctx, reason)
}

// signOutLocked requires writeMu.
func (m *Manager) signOutLocked(ctx context.Context, reason string) {
	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		slog.Error("failed to clear persisted session", "error", err)
	}

	m.mu.Lock()
	previous := m.state
	var actor int64
	if m.principal != nil {
		actor = m.principal.User.ID
	}
	m.epoch++
	m.sess = session.Session{}
	m.principal = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if previous == StateUnauthenticated {
		return
	}

	slog.Info("session ended", "reason", reason, "redirect", m.opts.LoginPath)
	m.opts.Metrics.SignOut(reason)
	m.publish(event.TypeSignedOut, actor, map[string]any{
		"reason":   reason,
		"redirect": m.opts.LoginPath,
	})
}

func (m *Manager) publish(t event.Type, actor int64, payload any) {
	if m.opts.Bus == nil {
		return
	}
	m.opts.Bus.Publish(event.Event{Type: t, ActorID: actor, Payload: payload})
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
