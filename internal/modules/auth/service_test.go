package auth

import (
	"context"
	"testing"
	"time"

	"clusterdeck/internal/domain"
	"clusterdeck/internal/pkg/password"
	"clusterdeck/internal/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type mockRoleRepo struct {
	mock.Mock
}

func (m *mockRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Create(ctx context.Context, t *domain.RefreshToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockLedger) Revoke(ctx context.Context, jti string, userID int64) (bool, error) {
	args := m.Called(ctx, jti, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) ListActive(ctx context.Context, userID int64) ([]domain.RefreshToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefreshToken), args.Error(1)
}

type noopAudit struct{}

func (noopAudit) Record(ctx context.Context, event string, userID *int64, fields map[string]any) {}

func newTestService(users *mockUserRepo, roles *mockRoleRepo, ledger *mockLedger) (*Service, *token.Codec) {
	codec := token.NewCodec("test-secret-test-secret-test-sec", "clusterdeck-test")
	return NewService(users, roles, ledger, codec, noopAudit{}, 15*time.Minute, 24*time.Hour), codec
}

func activeUser(hash string) *domain.User {
	return &domain.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: hash,
		Active:       true,
		Roles:        []domain.Role{{ID: 1, Name: domain.RoleViewer}},
	}
}

func TestService_Register_Success(t *testing.T) {
	users := new(mockUserRepo)
	roles := new(mockRoleRepo)
	ledger := new(mockLedger)

	users.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	roles.On("GetByName", mock.Anything, domain.RoleViewer).Return(&domain.Role{ID: 1, Name: domain.RoleViewer}, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.PasswordHash != "" && u.PasswordHash != "s3cret-pass" && len(u.Roles) == 1
	})).Return(nil)

	service, _ := newTestService(users, roles, ledger)

	user, err := service.Register(context.Background(), RegisterRequest{
		Username: "Alice",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash)
	users.AssertExpectations(t)
}

func TestService_Register_UsernameTaken(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)

	service, _ := newTestService(users, new(mockRoleRepo), new(mockLedger))

	_, err := service.Register(context.Background(), RegisterRequest{Username: "alice", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Register_RejectsWeakRequest(t *testing.T) {
	service, _ := newTestService(new(mockUserRepo), new(mockRoleRepo), new(mockLedger))

	_, err := service.Register(context.Background(), RegisterRequest{Username: "x", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidRegistration)
}

func TestService_Login_IssuesPairAndLedgerRow(t *testing.T) {
	users := new(mockUserRepo)
	ledger := new(mockLedger)

	hash, err := password.Hash("s3cret-pass")
	require.NoError(t, err)

	users.On("GetByUsername", mock.Anything, "alice").Return(activeUser(hash), nil)
	users.On("SetLastLogin", mock.Anything, int64(7), mock.Anything).Return(nil)

	var storedJTI string
	ledger.On("Create", mock.Anything, mock.MatchedBy(func(rt *domain.RefreshToken) bool {
		storedJTI = rt.JTI
		return rt.UserID == 7 && rt.JTI != "" && rt.ExpiresAt.After(time.Now())
	})).Return(nil)

	service, codec := newTestService(users, new(mockRoleRepo), ledger)

	user, pair, err := service.Login(context.Background(), LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	access, err := codec.DecodeWithType(pair.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(7), access.UserID)
	assert.Equal(t, []string{domain.RoleViewer}, access.Roles)
	assert.Empty(t, access.ID)

	refresh, err := codec.DecodeWithType(pair.RefreshToken, token.TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, storedJTI, refresh.ID)

	ledger.AssertExpectations(t)
}

func TestService_Login_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)

	hash, err := password.Hash("right-password")
	require.NoError(t, err)
	users.On("GetByUsername", mock.Anything, "alice").Return(activeUser(hash), nil)

	service, _ := newTestService(users, new(mockRoleRepo), new(mockLedger))

	_, _, err = service.Login(context.Background(), LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownUser(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	service, _ := newTestService(users, new(mockRoleRepo), new(mockLedger))

	_, _, err := service.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_InactiveUser(t *testing.T) {
	users := new(mockUserRepo)

	hash, err := password.Hash("s3cret-pass")
	require.NoError(t, err)
	u := activeUser(hash)
	u.Active = false
	users.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	service, _ := newTestService(users, new(mockRoleRepo), new(mockLedger))

	_, _, err = service.Login(context.Background(), LoginRequest{Username: "alice", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInactivePrincipal)
}

func TestService_Refresh_RotatesCredential(t *testing.T) {
	users := new(mockUserRepo)
	ledger := new(mockLedger)

	users.On("GetByID", mock.Anything, int64(7)).Return(activeUser("x"), nil)
	ledger.On("Revoke", mock.Anything, "old-jti", int64(7)).Return(true, nil)
	ledger.On("Create", mock.Anything, mock.Anything).Return(nil)

	service, codec := newTestService(users, new(mockRoleRepo), ledger)

	refreshRaw, err := codec.Encode(7, "alice", nil, nil, token.TypeRefresh, time.Hour, "old-jti")
	require.NoError(t, err)

	pair, err := service.Refresh(context.Background(), refreshRaw)
	require.NoError(t, err)

	rotated, err := codec.DecodeWithType(pair.RefreshToken, token.TypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, "old-jti", rotated.ID)

	ledger.AssertExpectations(t)
}

func TestService_Refresh_RejectsReusedToken(t *testing.T) {
	ledger := new(mockLedger)
	ledger.On("Revoke", mock.Anything, "used-jti", int64(7)).Return(false, nil)

	service, codec := newTestService(new(mockUserRepo), new(mockRoleRepo), ledger)

	refreshRaw, err := codec.Encode(7, "alice", nil, nil, token.TypeRefresh, time.Hour, "used-jti")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), refreshRaw)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	service, codec := newTestService(new(mockUserRepo), new(mockRoleRepo), new(mockLedger))

	accessRaw, err := codec.Encode(7, "alice", []string{domain.RoleViewer}, nil, token.TypeAccess, time.Hour, "")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), accessRaw)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestService_Refresh_RejectsExpiredToken(t *testing.T) {
	service, codec := newTestService(new(mockUserRepo), new(mockRoleRepo), new(mockLedger))

	expiredRaw, err := codec.Encode(7, "alice", nil, nil, token.TypeRefresh, -time.Minute, "dead-jti")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), expiredRaw)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestService_Refresh_InactiveUserAfterRotationWin(t *testing.T) {
	users := new(mockUserRepo)
	ledger := new(mockLedger)

	u := activeUser("x")
	u.Active = false
	users.On("GetByID", mock.Anything, int64(7)).Return(u, nil)
	ledger.On("Revoke", mock.Anything, "old-jti", int64(7)).Return(true, nil)

	service, codec := newTestService(users, new(mockRoleRepo), ledger)

	refreshRaw, err := codec.Encode(7, "alice", nil, nil, token.TypeRefresh, time.Hour, "old-jti")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), refreshRaw)
	assert.ErrorIs(t, err, ErrInactivePrincipal)
}

func TestService_Logout_IsIdempotent(t *testing.T) {
	ledger := new(mockLedger)
	ledger.On("Revoke", mock.Anything, "some-jti", int64(7)).Return(true, nil).Once()
	ledger.On("Revoke", mock.Anything, "some-jti", int64(7)).Return(false, nil).Once()

	service, codec := newTestService(new(mockUserRepo), new(mockRoleRepo), ledger)

	refreshRaw, err := codec.Encode(7, "alice", nil, nil, token.TypeRefresh, time.Hour, "some-jti")
	require.NoError(t, err)

	assert.NoError(t, service.Logout(context.Background(), refreshRaw))
	assert.NoError(t, service.Logout(context.Background(), refreshRaw))
}

func TestService_Logout_RejectsGarbage(t *testing.T) {
	service, _ := newTestService(new(mockUserRepo), new(mockRoleRepo), new(mockLedger))

	err := service.Logout(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestService_RevokeSession_NotFound(t *testing.T) {
	ledger := new(mockLedger)
	ledger.On("Revoke", mock.Anything, "missing", int64(7)).Return(false, nil)

	service, _ := newTestService(new(mockUserRepo), new(mockRoleRepo), ledger)

	err := service.RevokeSession(context.Background(), 7, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_ListSessions(t *testing.T) {
	ledger := new(mockLedger)
	now := time.Now().UTC()
	ledger.On("ListActive", mock.Anything, int64(7)).Return([]domain.RefreshToken{
		{JTI: "a", UserID: 7, CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{JTI: "b", UserID: 7, CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour)},
	}, nil)

	service, _ := newTestService(new(mockUserRepo), new(mockRoleRepo), ledger)

	sessions, err := service.ListSessions(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].JTI)
}
