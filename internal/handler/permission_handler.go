package handler

import (
	"context"
	"net/http"
	"strconv"

	"go-admin-panel/internal/permission"
	"go-admin-panel/pkg/apierror"
)

type roleFetcher interface {
	GetRole(ctx context.Context, id int64) (permission.Role, error)
}

// PermissionHandler serves the page/action catalogue to the role editor.
type PermissionHandler struct {
	catalogue *permission.Catalogue
	roles     roleFetcher
}

func NewPermissionHandler(catalogue *permission.Catalogue, roles roleFetcher) *PermissionHandler {
	return &PermissionHandler{catalogue: catalogue, roles: roles}
}

type catalogueEntry struct {
	Page      permission.Page      `json:"page"`
	Actions   []permission.Action  `json:"actions"`
	Granted   []permission.Action  `json:"granted,omitempty"`
	Selection permission.Selection `json:"selection,omitempty"`
}

// Catalogue lists every page with its valid actions. With ?role_id= each
// page also carries that role's effective grants and checkbox state.
func (h *PermissionHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	var (
		role    permission.Role
		hasRole bool
	)
	if raw := r.URL.Query().Get("role_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, apierror.New("BAD_REQUEST", "role_id must be a positive integer", "role_id", http.StatusBadRequest))
			return
		}

		role, err = h.roles.GetRole(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		hasRole = true
	}

	pages := h.catalogue.Pages()
	entries := make([]catalogueEntry, 0, len(pages))
	for _, page := range pages {
		entry := catalogueEntry{Page: page, Actions: h.catalogue.Actions(page)}
		if hasRole {
			granted := permission.NewActionSet()
			for _, action := range entry.Actions {
				if role.Allows(page, action) {
					granted[action] = struct{}{}
				}
			}
			entry.Granted = granted.Sorted()
			entry.Selection = h.catalogue.Selection(page, granted)
		}
		entries = append(entries, entry)
	}

	writeSuccess(w, http.StatusOK, entries, nil)
}
