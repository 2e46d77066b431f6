package repository

import (
	"context"
	"time"

	"clusterdeck/internal/domain"

	"gorm.io/gorm"
)

// RefreshTokenRepository is the refresh credential ledger, keyed by jti.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create appends a new ledger row. A row exists before the matching refresh
// token is ever handed to a client.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *RefreshTokenRepository) GetByJTI(ctx context.Context, jti string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).Where("jti = ?", jti).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IsActive reports whether a record exists for (jti, userID), is not revoked
// and has not expired.
func (r *RefreshTokenRepository) IsActive(ctx context.Context, jti string, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("jti = ? AND user_id = ? AND revoked = ? AND expires_at > ?", jti, userID, false, time.Now().UTC()).
		Count(&count).Error
	return count > 0, err
}

// Revoke atomically marks an active record revoked. The conditional update is
// the rotation guard: of two concurrent attempts on the same jti exactly one
// sees revoked = false and wins; the other gets false back and must refuse.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, jti string, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("jti = ? AND user_id = ? AND revoked = ? AND expires_at > ?", jti, userID, false, time.Now().UTC()).
		Update("revoked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RefreshTokenRepository) ListActive(ctx context.Context, userID int64) ([]domain.RefreshToken, error) {
	var tokens []domain.RefreshToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now().UTC()).
		Order("created_at DESC").
		Find(&tokens).Error
	return tokens, err
}

// PurgeExpiredBefore deletes rows whose expiry is older than the cutoff.
// Retention only: rows inside the window are never deleted, revoked or not.
func (r *RefreshTokenRepository) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}
