package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/repository"
	"github.com/princinho/storefront/repository/memstore"
	"github.com/princinho/storefront/tokens"
)

const (
	accessSecret  = "access-secret-for-tests"
	refreshSecret = "refresh-secret-for-tests"
)

type credentialsMock struct {
	mock.Mock
}

func (m *credentialsMock) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	return m.Called(ctx, userID, token, ttl).Error(0)
}

func (m *credentialsMock) Get(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *credentialsMock) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type fixture struct {
	manager *Manager
	users   *memstore.Users
	creds   *repository.RefreshTokenStore
	issuer  *tokens.Issuer
	redis   *miniredis.Miniredis
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Now()}

	issuer, err := tokens.NewIssuer(accessSecret, refreshSecret, tokens.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)

	f.redis = miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: f.redis.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f.users = memstore.NewUsers()
	f.creds = repository.NewRefreshTokenStore(client)
	f.issuer = issuer
	f.manager = NewManager(f.users, f.creds, issuer, logger.Nop())
	return f
}

func (f *fixture) register(t *testing.T, email string) *Session {
	t.Helper()
	s, err := f.manager.Register(context.Background(), "Ada Lovelace", email, "secret1")
	require.NoError(t, err)
	return s
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "unexpected error: %v", err)
}

func TestRegister_CreatesCustomerAndStoresRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.register(t, "  Ada@Example.com ")

	assert.Equal(t, "Ada Lovelace", s.User.Name)
	assert.Equal(t, "ada@example.com", s.User.Email)
	assert.Equal(t, models.RoleCustomer, s.User.Role)
	assert.NotNil(t, s.User.CartItems)

	userID, err := f.issuer.VerifyAccess(s.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, userID)

	stored, err := f.creds.Get(ctx, s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Tokens.RefreshToken, stored)
	assert.Equal(t, tokens.RefreshTTL, f.redis.TTL("refresh_token:"+s.User.ID))

	u, err := f.users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name, user, email, password string
	}{
		{"missing name", "", "a@b.c", "secret1"},
		{"blank name", "   ", "a@b.c", "secret1"},
		{"missing email", "Ada", "", "secret1"},
		{"missing password", "Ada", "a@b.c", ""},
		{"short name", "A", "a@b.c", "secret1"},
		{"email without at", "Ada", "ada.example.com", "secret1"},
		{"short password", "Ada", "a@b.c", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.Register(context.Background(), tt.user, tt.email, tt.password)
			assertKind(t, err, apperror.KindValidation)
		})
	}
}

func TestRegister_MissingFieldsMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Register(context.Background(), "", "", "")

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Name, email, and password are required", appErr.Message)
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")

	_, err := f.manager.Register(context.Background(), "Other", "ADA@example.com", "another1")

	assertKind(t, err, apperror.KindConflict)
}

func TestAuthenticate_UniformFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	_, errWrongPassword := f.manager.Authenticate(ctx, "ada@example.com", "wrong-password")
	_, errUnknown := f.manager.Authenticate(ctx, "nobody@example.com", "secret1")

	var a, b *apperror.Error
	require.ErrorAs(t, errWrongPassword, &a)
	require.ErrorAs(t, errUnknown, &b)
	assert.Equal(t, apperror.KindUnauthorized, a.Kind)
	assert.Equal(t, a.Kind, b.Kind)
	assert.Equal(t, "Invalid email or password", a.Message)
	assert.Equal(t, a.Message, b.Message)
}

func TestAuthenticate_BlankFieldsAreValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Authenticate(context.Background(), "", "secret1")
	assertKind(t, err, apperror.KindValidation)

	_, err = f.manager.Authenticate(context.Background(), "ada@example.com", "")
	assertKind(t, err, apperror.KindValidation)
}

func TestAuthenticate_SupersedesPreviousRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "ada@example.com")

	second, err := f.manager.Authenticate(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = f.manager.Rotate(ctx, first.Tokens.RefreshToken)
	assertKind(t, err, apperror.KindUnauthorized)

	access, err := f.manager.Rotate(ctx, second.Tokens.RefreshToken)
	require.NoError(t, err)
	userID, err := f.issuer.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, second.User.ID, userID)
}

func TestRotate_DoesNotReplaceRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ada@example.com")

	_, err := f.manager.Rotate(ctx, s.Tokens.RefreshToken)
	require.NoError(t, err)
	_, err = f.manager.Rotate(ctx, s.Tokens.RefreshToken)
	require.NoError(t, err)

	stored, err := f.creds.Get(ctx, s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Tokens.RefreshToken, stored)
}

func TestRotate_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ada@example.com")

	t.Run("blank", func(t *testing.T) {
		_, err := f.manager.Rotate(ctx, "")
		assertKind(t, err, apperror.KindUnauthorized)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := f.manager.Rotate(ctx, "not-a-jwt")
		assertKind(t, err, apperror.KindUnauthorized)
	})
	t.Run("access token", func(t *testing.T) {
		_, err := f.manager.Rotate(ctx, s.Tokens.AccessToken)
		assertKind(t, err, apperror.KindUnauthorized)
	})
	t.Run("signed but not stored", func(t *testing.T) {
		other, err := f.issuer.IssueRefresh(s.User.ID)
		require.NoError(t, err)
		_, err = f.manager.Rotate(ctx, other)
		assertKind(t, err, apperror.KindUnauthorized)
	})
}

func TestRotate_ExpiredRefreshToken(t *testing.T) {
	f := newFixture(t)
	s := f.register(t, "ada@example.com")

	f.now = f.now.Add(tokens.RefreshTTL + time.Minute)

	_, err := f.manager.Rotate(context.Background(), s.Tokens.RefreshToken)
	assertKind(t, err, apperror.KindUnauthorized)
}

func TestRevoke_ThenRotateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ada@example.com")

	f.manager.Revoke(ctx, s.Tokens.RefreshToken)

	_, err := f.creds.Get(ctx, s.User.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.manager.Rotate(ctx, s.Tokens.RefreshToken)
	assertKind(t, err, apperror.KindUnauthorized)
}

func TestRevoke_ExpiredTokenStillRevokes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ada@example.com")

	f.now = f.now.Add(tokens.RefreshTTL + time.Hour)
	f.manager.Revoke(ctx, s.Tokens.RefreshToken)

	_, err := f.creds.Get(ctx, s.User.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRevoke_IgnoresBlankAndUndecodableTokens(t *testing.T) {
	creds := &credentialsMock{}
	issuer, err := tokens.NewIssuer(accessSecret, refreshSecret)
	require.NoError(t, err)
	m := NewManager(memstore.NewUsers(), creds, issuer, logger.Nop())

	m.Revoke(context.Background(), "")
	m.Revoke(context.Background(), "not-a-jwt")

	creds.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRevoke_StoreFailureIsSwallowed(t *testing.T) {
	creds := &credentialsMock{}
	issuer, err := tokens.NewIssuer(accessSecret, refreshSecret)
	require.NoError(t, err)
	m := NewManager(memstore.NewUsers(), creds, issuer, logger.Nop())

	refresh, err := issuer.IssueRefresh("u1")
	require.NoError(t, err)
	creds.On("Delete", mock.Anything, "u1").Return(errors.New("connection refused")).Once()

	assert.NotPanics(t, func() { m.Revoke(context.Background(), refresh) })
	creds.AssertExpectations(t)
}

func TestRotate_StoreFailureIsInternal(t *testing.T) {
	creds := &credentialsMock{}
	issuer, err := tokens.NewIssuer(accessSecret, refreshSecret)
	require.NoError(t, err)
	m := NewManager(memstore.NewUsers(), creds, issuer, logger.Nop())

	refresh, err := issuer.IssueRefresh("u1")
	require.NoError(t, err)
	creds.On("Get", mock.Anything, "u1").Return("", errors.New("connection refused")).Once()

	_, err = m.Rotate(context.Background(), refresh)

	assertKind(t, err, apperror.KindInternal)
	creds.AssertExpectations(t)
}

func TestAuthenticate_FailedPersistStillReturnsSession(t *testing.T) {
	users := memstore.NewUsers()
	creds := &credentialsMock{}
	issuer, err := tokens.NewIssuer(accessSecret, refreshSecret)
	require.NoError(t, err)
	m := NewManager(users, creds, issuer, logger.Nop())

	creds.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string"), tokens.RefreshTTL).
		Return(errors.New("connection refused")).Twice()

	_, err = m.Register(context.Background(), "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	s, err := m.Authenticate(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Tokens.AccessToken)
	creds.AssertExpectations(t)
}

func TestPersist_SurvivesCanceledRequestContext(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := f.manager.Authenticate(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	stored, err := f.creds.Get(context.Background(), s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Tokens.RefreshToken, stored)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ada@example.com")

	err := f.manager.ChangePassword(ctx, s.User.ID, "wrong-password", "newsecret")
	assertKind(t, err, apperror.KindUnauthorized)

	err = f.manager.ChangePassword(ctx, s.User.ID, "secret1", "123")
	assertKind(t, err, apperror.KindValidation)

	require.NoError(t, f.manager.ChangePassword(ctx, s.User.ID, "secret1", "newsecret"))

	_, err = f.manager.Authenticate(ctx, "ada@example.com", "secret1")
	assertKind(t, err, apperror.KindUnauthorized)
	_, err = f.creds.Get(ctx, s.User.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.manager.Authenticate(ctx, "ada@example.com", "newsecret")
	require.NoError(t, err)
}

func TestChangePassword_UnknownAccount(t *testing.T) {
	f := newFixture(t)

	err := f.manager.ChangePassword(context.Background(), "000000000000000000000000", "secret1", "newsecret")

	assertKind(t, err, apperror.KindUnauthorized)
}
