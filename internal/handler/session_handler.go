package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-admin-panel/internal/authclient"
	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
	"go-admin-panel/pkg/apierror"
)

type sessionManager interface {
	State() authclient.State
	Principal() (authclient.Principal, bool)
	Login(ctx context.Context, email string, password string) (authclient.Principal, error)
	SignOut(ctx context.Context)
}

// SessionHandler exposes the console's session to the shell.
type SessionHandler struct {
	sessions  sessionManager
	model     *permission.Model
	catalogue *permission.Catalogue
	loginPath string
}

func NewSessionHandler(sessions sessionManager, model *permission.Model, catalogue *permission.Catalogue, loginPath string) *SessionHandler {
	return &SessionHandler{sessions: sessions, model: model, catalogue: catalogue, loginPath: loginPath}
}

type sessionView struct {
	State    string           `json:"state"`
	User     *model.User      `json:"user,omitempty"`
	Role     *permission.Role `json:"role,omitempty"`
	Redirect string           `json:"redirect,omitempty"`
}

func (h *SessionHandler) current() sessionView {
	view := sessionView{State: h.sessions.State().String()}
	if p, ok := h.sessions.Principal(); ok {
		view.User = &p.User
		view.Role = &p.Role
	}
	return view
}

func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.current(), nil)
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Email == "" || payload.Password == "" {
		writeError(w, apierror.New("BAD_REQUEST", "email and password are required", "", http.StatusBadRequest))
		return
	}

	if _, err := h.sessions.Login(r.Context(), payload.Email, payload.Password); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, h.current(), nil)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context())

	view := h.current()
	view.Redirect = h.loginPath
	writeSuccess(w, http.StatusOK, view, nil)
}

type affordances struct {
	Page    permission.Page            `json:"page"`
	Actions map[permission.Action]bool `json:"actions"`
	Any     bool                       `json:"any"`
}

// Affordances answers which of a page's actions the operator may use, so
// the shell can decide which buttons and columns to render.
func (h *SessionHandler) Affordances(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalogue.ParsePage(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil {
		writeError(w, err)
		return
	}
	if page == permission.PageAll {
		writeError(w, apierror.New("BAD_REQUEST", "page must name a screen", "page", http.StatusBadRequest))
		return
	}

	var requested []permission.Action
	if raw := strings.TrimSpace(r.URL.Query().Get("actions")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			action, err := h.catalogue.ParseAction(page, strings.TrimSpace(part))
			if err != nil {
				writeError(w, err)
				return
			}
			requested = append(requested, action)
		}
	} else {
		requested = h.catalogue.Actions(page)
	}

	out := affordances{Page: page, Actions: make(map[permission.Action]bool, len(requested))}
	for _, action := range requested {
		out.Actions[action] = h.model.HasRequiredPermission(page, action)
	}
	out.Any = h.model.HasSomePermissionsForPage(page, requested...)

	writeSuccess(w, http.StatusOK, out, nil)
}
