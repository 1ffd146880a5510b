package model

// User is the operator identity resolved from the access token subject.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	RoleID int64  `json:"roleId"`
}

// TokenPair is what the backend hands out on login and on refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether both halves of the pair are present.
func (p TokenPair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// AccessClaims is what the backend reads out of a verified access token.
type AccessClaims struct {
	UserID  int64
	RoleID  int64
	TokenID string
}
