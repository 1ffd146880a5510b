package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
)

type tokenValidator interface {
	ValidateAccessToken(token string) (*model.AccessClaims, error)
}

type roleLookup interface {
	RoleByID(id int64) (permission.Role, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AuthMiddleware guards the backend API. A missing access token is a 401;
// a token that fails verification is a 403, which clients treat as "refresh
// and retry".
type AuthMiddleware struct {
	validator tokenValidator
	roles     roleLookup
}

func NewAuthMiddleware(validator tokenValidator, roles roleLookup) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, roles: roles}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(AccessTokenHeader))
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "access token required")
			return
		}

		claims, err := m.validator.ValidateAccessToken(token)
		if err != nil {
			writeAuthError(w, http.StatusForbidden, "TOKEN_INVALID", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission re-checks a page/action grant against the caller's role.
func (m *AuthMiddleware) RequirePermission(page permission.Page, action permission.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			role, err := m.roles.RoleByID(claims.RoleID)
			if err != nil || !role.Allows(page, action) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.AccessClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AccessClaims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
