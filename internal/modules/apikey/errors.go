package apikey

import "errors"

var (
	ErrInvalidKeyFormat = errors.New("invalid api key format")
	ErrKeyNotFound      = errors.New("api key not found")
	ErrKeyExpired       = errors.New("api key expired")
	ErrKeyRevoked       = errors.New("api key revoked")
	ErrInactiveUser     = errors.New("api key owner inactive")
	ErrNotOwner         = errors.New("not the key owner")
)
