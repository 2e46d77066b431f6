package domain

import "time"

// RefreshToken is the ledger record behind an issued refresh credential.
//
// Security notes:
// - The token itself is a signed JWT carrying the jti; only the jti is stored here.
// - Revoked flips false->true exactly once and never back.
// - Rows are never deleted by the protocol; they stay around for audit and
//   replay detection. Offline retention cleanup lives in cmd/auth_cleanup.
type RefreshToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	JTI string `json:"jti" gorm:"size:36;uniqueIndex;not null"`

	UserID int64 `json:"user_id" gorm:"index;not null"`
	User   User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Revoked bool `json:"revoked" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.Revoked && !t.IsExpired(now)
}
