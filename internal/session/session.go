// Package session persists the operator's access/refresh token pair.
//
// Every Store writes and clears both tokens together; a reader never sees
// an access token from one pair next to a refresh token from another.
package session

import "context"

// Storage keys shared by every backend.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
)

type Session struct {
	AccessToken  string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
