package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clusterdeck/internal/domain"
	"clusterdeck/internal/modules/apikey"
	"clusterdeck/internal/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUsers struct {
	user *domain.User
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

type stubKeyRepo struct {
	key *domain.APIKey
}

func (s *stubKeyRepo) Create(ctx context.Context, k *domain.APIKey) error { return nil }

func (s *stubKeyRepo) GetByKeyID(ctx context.Context, keyID string) (*domain.APIKey, error) {
	if s.key == nil || s.key.KeyID != keyID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.key, nil
}

func (s *stubKeyRepo) GetByID(ctx context.Context, id int64) (*domain.APIKey, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubKeyRepo) ExistsByKeyID(ctx context.Context, keyID string) (bool, error) {
	return false, nil
}

func (s *stubKeyRepo) ListByUser(ctx context.Context, userID int64) ([]domain.APIKey, error) {
	return nil, nil
}

func (s *stubKeyRepo) Deactivate(ctx context.Context, id int64) (bool, error) { return false, nil }

func (s *stubKeyRepo) TouchLastUsed(ctx context.Context, id int64, at time.Time) error { return nil }

type stubAudit struct{}

func (stubAudit) Record(ctx context.Context, event string, userID *int64, fields map[string]any) {}

func testRouter(t *testing.T, users *stubUsers, keys *stubKeyRepo) (*gin.Engine, *token.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec := token.NewCodec("middleware-test-secret-0123456789", "clusterdeck-test")
	keyService := apikey.NewService(keys, users, stubAudit{})
	resolver := NewIdentityResolver(codec, keyService, users)

	router := gin.New()
	router.Use(resolver.Require())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64("user_id"),
			"roles":   c.GetStringSlice("roles"),
			"method":  c.GetString("auth_method"),
		})
	})
	router.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, codec
}

func activePrincipal() *domain.User {
	return &domain.User{
		ID:       42,
		Username: "alice",
		Active:   true,
		Roles:    []domain.Role{{ID: 1, Name: domain.RoleViewer}},
	}
}

func doGet(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestIdentityResolver_ValidAccessToken(t *testing.T) {
	router, codec := testRouter(t, &stubUsers{user: activePrincipal()}, &stubKeyRepo{})

	access, err := codec.Encode(42, "alice", []string{domain.RoleViewer}, nil, token.TypeAccess, time.Hour, "")
	require.NoError(t, err)

	w := doGet(router, "/protected", "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "viewer")
	assert.Contains(t, w.Body.String(), "jwt")
}

func TestIdentityResolver_RefreshTokenRejectedAsAccess(t *testing.T) {
	router, codec := testRouter(t, &stubUsers{user: activePrincipal()}, &stubKeyRepo{})

	refresh, err := codec.Encode(42, "alice", nil, nil, token.TypeRefresh, time.Hour, "some-jti")
	require.NoError(t, err)

	w := doGet(router, "/protected", "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityResolver_ExpiredToken(t *testing.T) {
	router, codec := testRouter(t, &stubUsers{user: activePrincipal()}, &stubKeyRepo{})

	expired, err := codec.Encode(42, "alice", nil, nil, token.TypeAccess, -time.Minute, "")
	require.NoError(t, err)

	w := doGet(router, "/protected", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestIdentityResolver_InactivePrincipal(t *testing.T) {
	user := activePrincipal()
	user.Active = false
	router, codec := testRouter(t, &stubUsers{user: user}, &stubKeyRepo{})

	access, err := codec.Encode(42, "alice", []string{domain.RoleViewer}, nil, token.TypeAccess, time.Hour, "")
	require.NoError(t, err)

	w := doGet(router, "/protected", "Bearer "+access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentityResolver_MissingAndMalformedHeader(t *testing.T) {
	router, _ := testRouter(t, &stubUsers{user: activePrincipal()}, &stubKeyRepo{})

	assert.Equal(t, http.StatusUnauthorized, doGet(router, "/protected", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "/protected", "Basic dGVzdA==").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "/protected", "Bearer").Code)
}

func TestIdentityResolver_APIKeyBranch(t *testing.T) {
	secret := "sssssssssssssssssssssssssssssss1"
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)

	keys := &stubKeyRepo{key: &domain.APIKey{
		ID:         1,
		KeyID:      "ab12cd34ef56",
		SecretHash: string(hash),
		UserID:     42,
		Active:     true,
	}}
	router, _ := testRouter(t, &stubUsers{user: activePrincipal()}, keys)

	w := doGet(router, "/protected", "Bearer cdk_ab12cd34ef56_"+secret)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "api_key")

	w = doGet(router, "/protected", "Bearer cdk_ab12cd34ef56_wrongsecret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_ForbidsViewerOnAdminRoute(t *testing.T) {
	router, codec := testRouter(t, &stubUsers{user: activePrincipal()}, &stubKeyRepo{})

	access, err := codec.Encode(42, "alice", []string{domain.RoleViewer}, nil, token.TypeAccess, time.Hour, "")
	require.NoError(t, err)

	w := doGet(router, "/admin", "Bearer "+access)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_AllowsAdmin(t *testing.T) {
	admin := activePrincipal()
	admin.Roles = []domain.Role{{ID: 3, Name: domain.RoleAdmin}}
	router, codec := testRouter(t, &stubUsers{user: admin}, &stubKeyRepo{})

	access, err := codec.Encode(42, "alice", []string{domain.RoleAdmin}, nil, token.TypeAccess, time.Hour, "")
	require.NoError(t, err)

	w := doGet(router, "/admin", "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
}
