package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-admin-panel/internal/authclient"
	"go-admin-panel/internal/guard"
	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
	"go-admin-panel/pkg/apierror"
)

type fakeResources struct {
	path  string
	query url.Values
	data  json.RawMessage
	meta  *model.Meta
	err   error
	// onGet runs before the response is returned.
	onGet func()
}

func (f *fakeResources) Get(_ context.Context, path string, query url.Values) (json.RawMessage, *model.Meta, error) {
	f.path = path
	f.query = query
	if f.onGet != nil {
		f.onGet()
	}
	return f.data, f.meta, f.err
}

func chatOperator() *fakeSessions {
	return &fakeSessions{
		state:     authclient.StateAuthenticated,
		principal: authclient.Principal{User: model.User{ID: 4}, Role: supportRole},
	}
}

func guarded(f *fakeSessions, page permission.Page, action permission.Action, h http.Handler) http.Handler {
	g := guard.New(f, permission.NewModel(f), guard.Options{})
	return g.Require(page, action)(h)
}

func TestScreenHandler_ListProxiesBackend(t *testing.T) {
	sessions := chatOperator()
	api := &fakeResources{
		data: json.RawMessage(`[{"id":1,"subject":"Late delivery"}]`),
		meta: &model.Meta{Page: 2, Limit: 1, Total: 3, TotalPages: 3},
	}
	h := NewScreenHandler(api, sessions, "/login", "/dashboard")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat?page=2&limit=1", nil)
	guarded(sessions, permission.PageChat, permission.ActionView, h.List("/api/chats")).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/chats", api.path)
	assert.Equal(t, "2", api.query.Get("page"))

	var env struct {
		Data struct {
			View   string            `json:"view"`
			Page   string            `json:"page"`
			Action string            `json:"action"`
			Data   []json.RawMessage `json:"data"`
		} `json:"data"`
		Meta *model.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "list", env.Data.View)
	assert.Equal(t, "Chat", env.Data.Page)
	assert.Equal(t, "view", env.Data.Action)
	assert.Len(t, env.Data.Data, 1)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 3, env.Meta.Total)
}

func TestScreenHandler_ListRedirectsAfterSignOut(t *testing.T) {
	sessions := chatOperator()
	api := &fakeResources{err: model.ErrUnauthenticated}
	api.onGet = func() { sessions.state = authclient.StateUnauthenticated }
	h := NewScreenHandler(api, sessions, "/login", "/dashboard")

	rec := httptest.NewRecorder()
	h.List("/api/chats")(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestScreenHandler_ListBackendError(t *testing.T) {
	sessions := chatOperator()
	api := &fakeResources{err: apierror.New("UPSTREAM_ERROR", "backend unavailable", "", http.StatusBadGateway)}
	h := NewScreenHandler(api, sessions, "/login", "/dashboard")

	rec := httptest.NewRecorder()
	h.List("/api/chats")(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "UPSTREAM_ERROR")
}

var chatAgentRole = permission.Role{ID: 5, Name: "Chat Agent", Permissions: []permission.Permission{
	{Page: permission.PageChat, Actions: permission.NewActionSet(permission.ActionView, permission.ActionCreate)},
}}

func TestScreenHandler_Form(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		sessions := &fakeSessions{
			state:     authclient.StateAuthenticated,
			principal: authclient.Principal{User: model.User{ID: 5}, Role: chatAgentRole},
		}
		h := NewScreenHandler(&fakeResources{}, sessions, "/login", "/dashboard")

		rec := httptest.NewRecorder()
		guarded(sessions, permission.PageChat, permission.ActionCreate, http.HandlerFunc(h.Form)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/new", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var view model.View
		decodeData(t, rec, &view)
		assert.Equal(t, "form", view.Name)
		assert.Equal(t, "Chat", view.Page)
		assert.Equal(t, "create", view.Action)
	})

	t.Run("view only", func(t *testing.T) {
		sessions := chatOperator()
		h := NewScreenHandler(&fakeResources{}, sessions, "/login", "/dashboard")

		rec := httptest.NewRecorder()
		guarded(sessions, permission.PageChat, permission.ActionCreate, http.HandlerFunc(h.Form)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/new", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/unauthorize", rec.Header().Get("Location"))
	})
}

func TestScreenHandler_LoginView(t *testing.T) {
	t.Run("authenticated operators go home", func(t *testing.T) {
		h := NewScreenHandler(&fakeResources{}, chatOperator(), "/login", "/dashboard")
		rec := httptest.NewRecorder()
		h.LoginView(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("signed out operators see the form", func(t *testing.T) {
		sessions := &fakeSessions{state: authclient.StateUnauthenticated}
		h := NewScreenHandler(&fakeResources{}, sessions, "/login", "/dashboard")
		rec := httptest.NewRecorder()
		h.LoginView(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var view model.View
		decodeData(t, rec, &view)
		assert.Equal(t, "login", view.Name)
	})
}

func TestScreenHandler_UnauthorizeView(t *testing.T) {
	h := NewScreenHandler(&fakeResources{}, chatOperator(), "/login", "/dashboard")
	rec := httptest.NewRecorder()
	h.UnauthorizeView(rec, httptest.NewRequest(http.MethodGet, "/unauthorize", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var view model.View
	decodeData(t, rec, &view)
	assert.Equal(t, "unauthorize", view.Name)
	assert.Equal(t, "/dashboard", view.Redirect)
}
