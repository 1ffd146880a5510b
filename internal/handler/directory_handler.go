package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-admin-panel/internal/service"
	"go-admin-panel/pkg/apierror"
)

// DirectoryHandler serves the development backend's users and roles.
type DirectoryHandler struct {
	catalog *service.CatalogService
}

func NewDirectoryHandler(catalog *service.CatalogService) *DirectoryHandler {
	return &DirectoryHandler{catalog: catalog}
}

func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.catalog.ListUsers()
	writeSuccess(w, http.StatusOK, users, nil)
}

func (h *DirectoryHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.catalog.UserByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *DirectoryHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.catalog.ListRoles(), nil)
}

func (h *DirectoryHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	role, err := h.catalog.RoleByID(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, role, nil)
}

// ListResource pages through the collection bound to the route.
func (h *DirectoryHandler) ListResource(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		items, meta, err := h.catalog.Page(name, page, limit)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusOK, items, &meta)
	}
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.New("BAD_REQUEST", "id must be a positive integer", "id", http.StatusBadRequest)
	}
	return id, nil
}
