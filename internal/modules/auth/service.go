package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clusterdeck/internal/domain"
	"clusterdeck/internal/pkg/password"
	"clusterdeck/internal/pkg/token"
	"clusterdeck/internal/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service contains the business logic for authentication and the session
// lifecycle. Refresh tokens are single use: every successful refresh retires
// the presented credential and issues a replacement.
type Service struct {
	users  UserRepositoryInterface
	roles  RoleRepositoryInterface
	ledger RefreshTokenLedgerInterface
	codec  *token.Codec
	audit  AuditRecorderInterface

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(
	users UserRepositoryInterface,
	roles RoleRepositoryInterface,
	ledger RefreshTokenLedgerInterface,
	codec *token.Codec,
	audit AuditRecorderInterface,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		roles:      roles,
		ledger:     ledger,
		codec:      codec,
		audit:      audit,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a new principal with the default viewer role. The request
// is validated here too, not just at the HTTP edge, because seed tooling and
// tests call the service directly.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if violations := validator.Validate(req); violations != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistration, violations)
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Active:       true,
	}

	viewer, err := s.roles.GetByName(ctx, domain.RoleViewer)
	if err == nil && viewer != nil {
		user.Roles = []domain.Role{*viewer}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "user.registered", &user.ID, map[string]any{
		"username": user.Username,
	})

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown username
// and wrong password collapse to the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, *TokenPairResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, ErrInactivePrincipal
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLoginAt = &now

	s.audit.Record(ctx, "auth.login", &user.ID, map[string]any{
		"username": user.Username,
	})

	user.PasswordHash = ""
	return user, pair, nil
}

// Refresh rotates a refresh credential. The presented token is retired
// atomically before a replacement is issued; of two concurrent attempts with
// the same token exactly one succeeds and the other is refused.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*TokenPairResponse, error) {
	claims, err := s.codec.DecodeWithType(refreshRaw, token.TypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	won, err := s.ledger.Revoke(ctx, claims.ID, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !won {
		// Already revoked, already rotated, expired, or never ours.
		s.audit.Record(ctx, "auth.refresh_rejected", &claims.UserID, map[string]any{
			"jti": claims.ID,
		})
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrInactivePrincipal
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "auth.refreshed", &user.ID, map[string]any{
		"old_jti": claims.ID,
	})

	return pair, nil
}

// Logout revokes the presented refresh token. Revoking a token that is
// already dead is not an error; logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshRaw string) error {
	claims, err := s.codec.DecodeWithType(refreshRaw, token.TypeRefresh)
	if err != nil {
		return ErrInvalidRefreshToken
	}

	won, err := s.ledger.Revoke(ctx, claims.ID, claims.UserID)
	if err != nil {
		return err
	}
	if won {
		s.audit.Record(ctx, "auth.logout", &claims.UserID, map[string]any{
			"jti": claims.ID,
		})
	}
	return nil
}

// ListSessions returns the user's live refresh credentials.
func (s *Service) ListSessions(ctx context.Context, userID int64) ([]SessionInfo, error) {
	tokens, err := s.ledger.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, SessionInfo{
			JTI:       t.JTI,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}
	return out, nil
}

// RevokeSession kills one of the caller's own sessions by jti. The ownership
// condition inside Revoke stops one user killing another's session.
func (s *Service) RevokeSession(ctx context.Context, userID int64, jti string) error {
	won, err := s.ledger.Revoke(ctx, jti, userID)
	if err != nil {
		return err
	}
	if !won {
		return ErrSessionNotFound
	}

	s.audit.Record(ctx, "session.revoked", &userID, map[string]any{
		"jti": jti,
	})
	return nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != "" {
		user.DisplayName = strings.TrimSpace(req.DisplayName)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// issuePair mints an access/refresh pair. The ledger row is written before
// the refresh token string exists, so a token the client holds always has a
// row behind it.
func (s *Service) issuePair(ctx context.Context, user *domain.User) (*TokenPairResponse, error) {
	roles := user.RoleNames()
	now := time.Now().UTC()

	jti := uuid.NewString()
	if err := s.ledger.Create(ctx, &domain.RefreshToken{
		JTI:       jti,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.refreshTTL),
	}); err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Encode(user.ID, user.Username, roles, user.TenantID, token.TypeAccess, s.accessTTL, "")
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Encode(user.ID, user.Username, nil, user.TenantID, token.TypeRefresh, s.refreshTTL, jti)
	if err != nil {
		return nil, err
	}

	return &TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}
