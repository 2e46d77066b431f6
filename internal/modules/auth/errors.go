package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRegistration = errors.New("invalid registration request")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInactivePrincipal   = errors.New("principal is inactive")
	ErrSessionNotFound     = errors.New("session not found")
)
