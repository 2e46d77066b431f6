package admin

import (
	"context"

	"clusterdeck/internal/domain"
)

// AuditReaderInterface — read access to the auth event log.
type AuditReaderInterface interface {
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// UserAdminInterface — the account controls an admin can pull.
type UserAdminInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Deactivate(ctx context.Context, id int64) error
}

// AuditRecorderInterface — best-effort event sink.
type AuditRecorderInterface interface {
	Record(ctx context.Context, event string, userID *int64, fields map[string]any)
}
