package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go-admin-panel/internal/authclient"
	"go-admin-panel/internal/guard"
	"go-admin-panel/internal/model"
)

type resourceFetcher interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, *model.Meta, error)
}

type stateReader interface {
	State() authclient.State
}

// ScreenHandler answers the admin screens' routes with view descriptors.
// List screens carry the backend collection they display.
type ScreenHandler struct {
	api       resourceFetcher
	sessions  stateReader
	loginPath string
	homePath  string
}

func NewScreenHandler(api resourceFetcher, sessions stateReader, loginPath string, homePath string) *ScreenHandler {
	return &ScreenHandler{api: api, sessions: sessions, loginPath: loginPath, homePath: homePath}
}

// List renders a list screen backed by the backend collection at apiPath.
func (h *ScreenHandler) List(apiPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, _ := guard.RuleFromContext(r.Context())

		data, meta, err := h.api.Get(r.Context(), apiPath, r.URL.Query())
		if err != nil {
			// The session manager has already signed out; send the shell to login.
			if h.sessions.State() == authclient.StateUnauthenticated {
				http.Redirect(w, r, h.loginPath, http.StatusFound)
				return
			}
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, model.View{
			Name:   "list",
			Page:   string(rule.Page),
			Action: string(rule.Action),
			Data:   data,
		}, meta)
	}
}

// Form renders an editor screen. It carries no data.
func (h *ScreenHandler) Form(w http.ResponseWriter, r *http.Request) {
	rule, _ := guard.RuleFromContext(r.Context())
	writeSuccess(w, http.StatusOK, model.View{
		Name:   "form",
		Page:   string(rule.Page),
		Action: string(rule.Action),
	}, nil)
}

func (h *ScreenHandler) LoginView(w http.ResponseWriter, r *http.Request) {
	if h.sessions.State() == authclient.StateAuthenticated {
		http.Redirect(w, r, h.homePath, http.StatusFound)
		return
	}
	writeSuccess(w, http.StatusOK, model.View{Name: "login"}, nil)
}

func (h *ScreenHandler) UnauthorizeView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusForbidden, model.APIResponse{
		Success: false,
		Data:    model.View{Name: "unauthorize", Redirect: h.homePath},
		Error:   &model.APIError{Code: "FORBIDDEN", Message: "You do not have access to this page"},
	})
}

func (h *ScreenHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.homePath, http.StatusFound)
}
