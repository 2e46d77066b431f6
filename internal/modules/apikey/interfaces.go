package apikey

import (
	"context"
	"time"

	"clusterdeck/internal/domain"
)

// APIKeyRepositoryInterface — only the methods the key service uses.
type APIKeyRepositoryInterface interface {
	Create(ctx context.Context, k *domain.APIKey) error
	GetByKeyID(ctx context.Context, keyID string) (*domain.APIKey, error)
	GetByID(ctx context.Context, id int64) (*domain.APIKey, error)
	ExistsByKeyID(ctx context.Context, keyID string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.APIKey, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
	TouchLastUsed(ctx context.Context, id int64, at time.Time) error
}

// UserReaderInterface — principal lookup for key ownership and verification.
type UserReaderInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// AuditRecorderInterface — best-effort event sink.
type AuditRecorderInterface interface {
	Record(ctx context.Context, event string, userID *int64, fields map[string]any)
}
