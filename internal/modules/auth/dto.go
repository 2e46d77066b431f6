package auth

import "time"

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=64,alphanum" validate:"required,min=3,max=64,alphanum"`
	Password    string `json:"password" binding:"required,min=8,max=128" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"omitempty,max=128" validate:"omitempty,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"omitempty,max=128"`
}

// TokenPairResponse is the issue/refresh payload. ExpiresIn is the access
// token lifetime in seconds.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionInfo describes one live refresh credential. The token itself is not
// recoverable; only its ledger metadata is shown.
type SessionInfo struct {
	JTI       string    `json:"jti"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name,omitempty"`
	Roles       []string   `json:"roles"`
	TenantID    *int64     `json:"tenant_id,omitempty"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
