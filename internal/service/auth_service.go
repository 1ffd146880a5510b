package service

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-admin-panel/internal/model"
	"go-admin-panel/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type accountSource interface {
	AccountByEmail(email string) (Account, error)
	UserByID(id int64) (model.User, error)
}

type AuthOptions struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// AuthService issues and verifies the development backend's tokens. Access
// tokens carry {id, roleId, exp}; refresh tokens are single use.
type AuthService struct {
	accounts   accountSource
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	mu            sync.Mutex
	refreshTokens map[string]int64 // jti -> user id
}

func NewAuthService(accounts accountSource, opts AuthOptions) (*AuthService, error) {
	if opts.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &AuthService{
		accounts:      accounts,
		jwtSecret:     []byte(opts.Secret),
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		now:           opts.Now,
		refreshTokens: map[string]int64{},
	}, nil
}

func (s *AuthService) Login(email string, password string) (model.TokenPair, error) {
	account, err := s.accounts.AccountByEmail(email)
	if err != nil {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.issueTokenPair(account.User)
}

// Refresh consumes refreshToken and issues a new pair.
func (s *AuthService) Refresh(refreshToken string) (model.TokenPair, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.mu.Lock()
	ownerID, exists := s.refreshTokens[claims.ID]
	delete(s.refreshTokens, claims.ID)
	s.mu.Unlock()

	if !exists || ownerID != claims.UserID {
		return model.TokenPair{}, apierror.New("UNAUTHORIZED", "refresh token is invalid", "", http.StatusUnauthorized)
	}

	user, err := s.accounts.UserByID(claims.UserID)
	if err != nil {
		return model.TokenPair{}, apierror.New("UNAUTHORIZED", "user not found", "", http.StatusUnauthorized)
	}

	return s.issueTokenPair(user)
}

// Logout revokes refreshToken. Unknown or malformed tokens are ignored.
func (s *AuthService) Logout(refreshToken string) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return
	}

	s.mu.Lock()
	delete(s.refreshTokens, claims.ID)
	s.mu.Unlock()
}

func (s *AuthService) ValidateAccessToken(token string) (*model.AccessClaims, error) {
	claims, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &model.AccessClaims{UserID: claims.UserID, RoleID: claims.RoleID, TokenID: claims.ID}, nil
}

type tokenClaims struct {
	UserID int64  `json:"id"`
	RoleID int64  `json:"roleId,omitempty"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

func (s *AuthService) parse(raw string, expectedType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, model.ErrTokenInvalid
	}

	if claims.Type != expectedType || claims.UserID <= 0 {
		return nil, model.ErrTokenInvalid
	}

	return claims, nil
}

func (s *AuthService) issueTokenPair(user model.User) (model.TokenPair, error) {
	now := s.now().UTC()

	accessToken, err := s.signToken(tokenClaims{
		UserID: user.ID,
		RoleID: user.RoleID,
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshJTI := uuid.NewString()
	refreshToken, err := s.signToken(tokenClaims{
		UserID: user.ID,
		Type:   tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshJTI,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	s.mu.Lock()
	s.refreshTokens[refreshJTI] = user.ID
	s.mu.Unlock()

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) signToken(claims tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
