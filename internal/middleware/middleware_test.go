package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
)

type stubValidator map[string]*model.AccessClaims

func (s stubValidator) ValidateAccessToken(token string) (*model.AccessClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, model.ErrTokenInvalid
	}
	return claims, nil
}

type stubRoles map[int64]permission.Role

func (s stubRoles) RoleByID(id int64) (permission.Role, error) {
	role, ok := s[id]
	if !ok {
		return permission.Role{}, errors.New("no role")
	}
	return role, nil
}

func TestAuthMiddleware(t *testing.T) {
	validator := stubValidator{"good": {UserID: 1, RoleID: 2}}
	roles := stubRoles{2: {ID: 2, Permissions: []permission.Permission{
		{Page: permission.PageOrder, Actions: permission.NewActionSet(permission.ActionView)},
	}}}
	mw := NewAuthMiddleware(validator, roles)

	handler := func(page permission.Page, action permission.Action) http.Handler {
		return mw.RequireAuth(mw.RequirePermission(page, action)(okHandler()))
	}

	tests := []struct {
		name   string
		token  string
		action permission.Action
		status int
		code   string
	}{
		{"missing token", "", permission.ActionView, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid token", "stale", permission.ActionView, http.StatusForbidden, "TOKEN_INVALID"},
		{"granted", "good", permission.ActionView, http.StatusOK, ""},
		{"not granted", "good", permission.ActionDelete, http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.token != "" {
				req.Header.Set(AccessTokenHeader, tt.token)
			}
			rec := httptest.NewRecorder()
			handler(permission.PageOrder, tt.action).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Contains(t, rec.Body.String(), tt.code)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Unexpected server error"}}`, rec.Body.String())
}

func TestLogging_AssignsRequestID(t *testing.T) {
	var seen string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		http.Redirect(w, r, "/login", http.StatusFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(requestIDHeader))
	assert.Equal(t, http.StatusFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(requestIDHeader, "fixed")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "fixed", rec.Header().Get(requestIDHeader))
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})

	rec := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUEST_TIMEOUT")
}

func TestCORS_AllowsAccessTokenHeader(t *testing.T) {
	handler := CORS([]string{"https://admin.example.com"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", AccessTokenHeader)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), AccessTokenHeader)
}
