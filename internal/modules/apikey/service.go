package apikey

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"slices"
	"strings"
	"time"

	"clusterdeck/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	keyIDLength  = 12
	secretLength = 32

	keyIDCharset  = "abcdefghijklmnopqrstuvwxyz0123456789"
	secretCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxKeyIDAttempts = 5
)

// Pre-computed bcrypt hash of an arbitrary string for timing-equalized
// comparisons when the key id is unknown.
var dummySecretHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOa5hnhtNGRjukDWO2xzg3sjQTL1dDQ2u")

// Caps concurrent last-used updates so verification never spawns unbounded
// goroutines under load.
var lastUsedSem = make(chan struct{}, 8)

// Service contains the business logic for opaque API keys. The composite
// string handed to clients is cdk_<key_id>_<secret>; only a bcrypt hash of the
// secret half is stored.
type Service struct {
	keys  APIKeyRepositoryInterface
	users UserReaderInterface
	audit AuditRecorderInterface
}

func NewService(keys APIKeyRepositoryInterface, users UserReaderInterface, audit AuditRecorderInterface) *Service {
	return &Service{
		keys:  keys,
		users: users,
		audit: audit,
	}
}

// HasKeyPrefix reports whether a bearer credential looks like an API key
// composite. Used by the identity resolver to pick the verification branch
// without attempting a JWT parse.
func HasKeyPrefix(raw string) bool {
	return strings.HasPrefix(raw, domain.APIKeyPrefix+"_")
}

// Create generates a new key for the user and returns the record plus the
// full composite. The composite exists in plaintext only in this return value.
func (s *Service) Create(ctx context.Context, userID int64, req CreateKeyRequest) (*domain.APIKey, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !user.Active {
		return nil, "", ErrInactiveUser
	}

	keyID, err := s.generateKeyID(ctx)
	if err != nil {
		return nil, "", err
	}
	secret, err := randomString(secretLength, secretCharset)
	if err != nil {
		return nil, "", err
	}

	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	key := &domain.APIKey{
		KeyID:      keyID,
		SecretHash: string(secretHash),
		Name:       strings.TrimSpace(req.Name),
		UserID:     user.ID,
		TenantID:   user.TenantID,
		Scopes:     req.Scopes,
		Active:     true,
	}
	if req.ExpiresInDays > 0 {
		expires := time.Now().UTC().AddDate(0, 0, req.ExpiresInDays)
		key.ExpiresAt = &expires
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, "apikey.created", &user.ID, map[string]any{
		"key_id": keyID,
		"name":   key.Name,
	})

	composite := fmt.Sprintf("%s_%s_%s", domain.APIKeyPrefix, keyID, secret)
	return key, composite, nil
}

// Verify parses and verifies a composite key string and returns the owning
// principal. The public key id drives an indexed lookup; only then is the
// slow hash comparison performed.
func (s *Service) Verify(ctx context.Context, composite string) (*domain.User, *domain.APIKey, error) {
	keyID, secret, err := parseComposite(composite)
	if err != nil {
		return nil, nil, err
	}

	key, err := s.keys.GetByKeyID(ctx, keyID)
	if err != nil {
		// Equalize timing with the found-but-wrong-secret path.
		_ = bcrypt.CompareHashAndPassword(dummySecretHash, []byte(secret))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrKeyNotFound
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	if !key.Active {
		return nil, nil, ErrKeyRevoked
	}
	if key.IsExpired(now) {
		return nil, nil, ErrKeyExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)) != nil {
		return nil, nil, ErrKeyNotFound
	}

	user, err := s.users.GetByID(ctx, key.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, ErrInactiveUser
	}

	s.touchLastUsed(ctx, key.ID)

	return user, key, nil
}

// List returns metadata for the user's keys. The secret half is not stored
// and therefore cannot appear here.
func (s *Service) List(ctx context.Context, userID int64) ([]KeyMetadata, error) {
	keys, err := s.keys.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]KeyMetadata, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyMetadata{
			ID:         k.ID,
			KeyID:      k.KeyID,
			Name:       k.Name,
			Scopes:     k.Scopes,
			IsActive:   k.Active,
			ExpiresAt:  k.ExpiresAt,
			LastUsedAt: k.LastUsedAt,
			CreatedAt:  k.CreatedAt,
		})
	}
	return out, nil
}

// Revoke deactivates a key. Only the owning principal or an admin may revoke.
func (s *Service) Revoke(ctx context.Context, id int64, requesterID int64, requesterRoles []string) error {
	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrKeyNotFound
		}
		return err
	}

	if key.UserID != requesterID && !slices.Contains(requesterRoles, domain.RoleAdmin) {
		return ErrNotOwner
	}

	if _, err := s.keys.Deactivate(ctx, key.ID); err != nil {
		return err
	}

	s.audit.Record(ctx, "apikey.revoked", &requesterID, map[string]any{
		"key_id": key.KeyID,
		"owner":  key.UserID,
	})
	return nil
}

func (s *Service) generateKeyID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxKeyIDAttempts; attempt++ {
		keyID, err := randomString(keyIDLength, keyIDCharset)
		if err != nil {
			return "", err
		}
		exists, err := s.keys.ExistsByKeyID(ctx, keyID)
		if err != nil {
			return "", err
		}
		if !exists {
			return keyID, nil
		}
	}
	return "", errors.New("could not generate unique key id")
}

// touchLastUsed updates the last-used timestamp without blocking the request.
func (s *Service) touchLastUsed(ctx context.Context, keyRecordID int64) {
	select {
	case lastUsedSem <- struct{}{}:
		go func() {
			defer func() { <-lastUsedSem }()
			bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := s.keys.TouchLastUsed(bgCtx, keyRecordID, time.Now().UTC()); err != nil {
				log.Printf("apikey last_used update failed key=%d error=%v", keyRecordID, err)
			}
		}()
	default:
		// under load skipping the timestamp beats queueing goroutines
	}
}

func parseComposite(raw string) (keyID, secret string, err error) {
	parts := strings.SplitN(raw, "_", 3)
	if len(parts) != 3 || parts[0] != domain.APIKeyPrefix {
		return "", "", ErrInvalidKeyFormat
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", ErrInvalidKeyFormat
	}
	return parts[1], parts[2], nil
}

func randomString(n int, charset string) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		buf[i] = charset[num.Int64()]
	}
	return string(buf), nil
}
