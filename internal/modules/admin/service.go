package admin

import (
	"context"
	"errors"

	"clusterdeck/internal/domain"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

const defaultAuditLimit = 100

// Service holds the admin-only operations: inspecting the auth event log and
// pulling the kill switch on a principal.
type Service struct {
	auditLog AuditReaderInterface
	users    UserAdminInterface
	audit    AuditRecorderInterface
}

func NewService(auditLog AuditReaderInterface, users UserAdminInterface, audit AuditRecorderInterface) *Service {
	return &Service{
		auditLog: auditLog,
		users:    users,
		audit:    audit,
	}
}

func (s *Service) ListAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultAuditLimit
	}
	return s.auditLog.ListRecent(ctx, limit)
}

// DeactivateUser flips the principal inactive. Outstanding access tokens keep
// verifying cryptographically but the active check in the identity resolver
// refuses them from the next request on.
func (s *Service) DeactivateUser(ctx context.Context, adminID, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.users.Deactivate(ctx, user.ID); err != nil {
		return err
	}

	s.audit.Record(ctx, "user.deactivated", &adminID, map[string]any{
		"target_user": user.ID,
		"username":    user.Username,
	})
	return nil
}
