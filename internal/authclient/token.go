package authclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-admin-panel/internal/model"
)

// Claims is the part of the access token payload the console reads. The
// signature is not verified here; the backend re-checks every request.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// Expired reports whether the token's exp is at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.Time.After(now)
}

// DecodeToken reads {id, exp} out of an access token. Any token without a
// positive numeric id and an exp is rejected with model.ErrTokenDecode.
func DecodeToken(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, fmt.Errorf("%w: %w", model.ErrTokenDecode, model.ErrNoAccessToken)
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", model.ErrTokenDecode, err)
	}

	if claims.UserID <= 0 {
		return Claims{}, fmt.Errorf("%w: missing subject id", model.ErrTokenDecode)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing exp", model.ErrTokenDecode)
	}

	return claims, nil
}
