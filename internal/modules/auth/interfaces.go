package auth

import (
	"context"
	"time"

	"clusterdeck/internal/domain"
)

// UserRepositoryInterface — only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
}

// RoleRepositoryInterface — role lookup for registration defaults.
type RoleRepositoryInterface interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
}

// RefreshTokenLedgerInterface — the revocation ledger behind refresh tokens.
type RefreshTokenLedgerInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	Revoke(ctx context.Context, jti string, userID int64) (bool, error)
	ListActive(ctx context.Context, userID int64) ([]domain.RefreshToken, error)
}

// AuditRecorderInterface — best-effort event sink.
type AuditRecorderInterface interface {
	Record(ctx context.Context, event string, userID *int64, fields map[string]any)
}
