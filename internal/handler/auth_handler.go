package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go-admin-panel/internal/model"
	"go-admin-panel/internal/service"
	"go-admin-panel/pkg/apierror"
)

// AuthHandler serves the development backend's token endpoints. Login and
// refresh answer with the flat {success, token, refreshToken} body.
type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	tokens, err := h.service.Login(payload.Email, payload.Password)
	if errors.Is(err, model.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, model.LoginResponse{Success: false, Message: "invalid credentials"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Success:      true,
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.New("BAD_REQUEST", "refreshToken is required", "refreshToken", http.StatusBadRequest))
		return
	}

	tokens, err := h.service.Refresh(payload.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, model.RefreshResponse{Success: false})
		return
	}

	writeJSON(w, http.StatusOK, model.RefreshResponse{
		Success:      true,
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	h.service.Logout(strings.TrimSpace(payload.RefreshToken))
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}
