package apikey

import "time"

type CreateKeyRequest struct {
	Name          string   `json:"name" binding:"required,max=128"`
	Scopes        []string `json:"scopes" binding:"required,min=1,dive,max=64"`
	ExpiresInDays int      `json:"expires_in_days" binding:"omitempty,min=1,max=365"`
}

// CreatedKeyResponse carries the composite secret exactly once. No read
// operation can ever reconstruct it.
type CreatedKeyResponse struct {
	APIKey    string    `json:"api_key"`
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyMetadata is what list/read operations return: metadata only, no secret.
type KeyMetadata struct {
	ID         int64      `json:"id"`
	KeyID      string     `json:"key_id"`
	Name       string     `json:"name"`
	Scopes     []string   `json:"scopes"`
	IsActive   bool       `json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
