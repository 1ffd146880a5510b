package authclient

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-admin-panel/internal/event"
	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
	"go-admin-panel/internal/session"
)

var buyerRole = permission.Role{
	ID:         2,
	Name:       "Buyer",
	Active:     true,
	RoleNumber: 2,
	Permissions: []permission.Permission{
		{Page: permission.PagePurchaseOrder, Actions: permission.NewActionSet(permission.ActionView)},
	},
}

func signToken(t *testing.T, id int64, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  id,
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

type mockBackend struct {
	mock.Mock
}

func (b *mockBackend) Login(_ context.Context, email string, password string) (model.TokenPair, error) {
	args := b.Called(email, password)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (b *mockBackend) Refresh(_ context.Context, refreshToken string) (model.TokenPair, error) {
	args := b.Called(refreshToken)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (b *mockBackend) GetUser(_ context.Context, id int64) (model.User, error) {
	args := b.Called(id)
	return args.Get(0).(model.User), args.Error(1)
}

func (b *mockBackend) GetRole(_ context.Context, id int64) (permission.Role, error) {
	args := b.Called(id)
	return args.Get(0).(permission.Role), args.Error(1)
}

// gatedBackend blocks every refresh until gate is closed and counts calls.
type gatedBackend struct {
	gate         chan struct{}
	pair         model.TokenPair
	err          error
	refreshCalls atomic.Int32
}

func (b *gatedBackend) Login(context.Context, string, string) (model.TokenPair, error) {
	return model.TokenPair{}, model.ErrInvalidCredentials
}

func (b *gatedBackend) Refresh(context.Context, string) (model.TokenPair, error) {
	b.refreshCalls.Add(1)
	if b.gate != nil {
		<-b.gate
	}
	return b.pair, b.err
}

func (b *gatedBackend) GetUser(_ context.Context, id int64) (model.User, error) {
	return model.User{ID: id, RoleID: buyerRole.ID}, nil
}

func (b *gatedBackend) GetRole(context.Context, int64) (permission.Role, error) {
	return buyerRole, nil
}

func newTestManager(t *testing.T, store session.Store, backend Backend) (*Manager, <-chan event.Event) {
	t.Helper()

	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	t.Cleanup(unsubscribe)

	m := NewManager(store, backend, Options{
		Bus:            bus,
		RefreshTimeout: 5 * time.Second,
		LookupTimeout:  5 * time.Second,
	})
	return m, events
}

func waiterCount(m *Manager) int {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	return len(m.waiters)
}

func findEvent(events <-chan event.Event, t event.Type) (event.Event, bool) {
	for {
		select {
		case e := <-events:
			if e.Type == t {
				return e, true
			}
		default:
			return event.Event{}, false
		}
	}
}
