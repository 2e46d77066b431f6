package domain

import "time"

// APIKeyPrefix is the fixed prefix of the composite key string handed to clients:
// cdk_<key_id>_<secret>. The prefix lets the identity resolver route a bearer
// credential to API-key verification without attempting a JWT parse.
const APIKeyPrefix = "cdk"

// APIKey is an opaque long-lived credential. KeyID is the public, indexed
// lookup half; only a bcrypt hash of the secret half is ever stored. The full
// composite exists in plaintext exactly once, in the create response.
type APIKey struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	KeyID      string `json:"key_id" gorm:"size:16;uniqueIndex;not null"`
	SecretHash string `json:"-" gorm:"size:64;not null"`

	Name string `json:"name" gorm:"size:128;not null"`

	UserID   int64  `json:"user_id" gorm:"index;not null"`
	User     User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TenantID *int64 `json:"tenant_id,omitempty"`

	Scopes []string `json:"scopes" gorm:"type:json;serializer:json"`

	Active     bool       `json:"is_active" gorm:"not null;default:true"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}
