package model

import "errors"

var (
	// Session related errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNoAccessToken   = errors.New("no access token")
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrTokenDecode     = errors.New("token decode failed")

	// Refresh and resolution errors
	ErrRefreshFailed = errors.New("token refresh failed")
	ErrLookupFailed  = errors.New("user lookup failed")
	ErrNotReplayable = errors.New("request body cannot be replayed")

	// Login errors
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Backend token errors
	ErrTokenInvalid = errors.New("token invalid or expired")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)
