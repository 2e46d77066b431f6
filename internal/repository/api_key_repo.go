package repository

import (
	"context"
	"time"

	"clusterdeck/internal/domain"

	"gorm.io/gorm"
)

// APIKeyRepository provides DB access for opaque API keys. Lookup goes through
// the public KeyID column so verification never scans secret hashes.
type APIKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, k *domain.APIKey) error {
	return r.db.WithContext(ctx).Create(k).Error
}

func (r *APIKeyRepository) GetByKeyID(ctx context.Context, keyID string) (*domain.APIKey, error) {
	var k domain.APIKey
	err := r.db.WithContext(ctx).Where("key_id = ?", keyID).First(&k).Error
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *APIKeyRepository) GetByID(ctx context.Context, id int64) (*domain.APIKey, error) {
	var k domain.APIKey
	err := r.db.WithContext(ctx).First(&k, id).Error
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *APIKeyRepository) ExistsByKeyID(ctx context.Context, keyID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.APIKey{}).Where("key_id = ?", keyID).Count(&count).Error
	return count > 0, err
}

func (r *APIKeyRepository) ListByUser(ctx context.Context, userID int64) ([]domain.APIKey, error) {
	var keys []domain.APIKey
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}

// Deactivate idempotently flips active to false. Returns whether a live key
// was actually deactivated.
func (r *APIKeyRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.APIKey{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}
