package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "Storefront Test"},
		Session:  config.SessionConfig{Secret: "test-session-secret-that-is-long-enough", Expiry: time.Hour},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func newService(t *testing.T) (*user.Service, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	cfg := testConfig()
	store := memory.NewStore()
	svc := user.NewService(store.Users(), auth.NewPasswordManager(cfg), auth.NewJWTManager(cfg), store.Sessions(), logger)
	return svc, hook
}

func TestRegister(t *testing.T) {
	svc, hook := newService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &user.RegisterRequest{
		Email:           "  Ana@Example.COM ",
		Password:        "segredo123",
		ConfirmPassword: "segredo123",
		Role:            "seller",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, user.RoleSeller, resp.User.Role)
	assert.NotEqual(t, "segredo123", resp.User.Password)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "user registered", hook.LastEntry().Message)

	caller, claims, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, caller.UserID)
	assert.True(t, caller.IsSeller())
	assert.NotEmpty(t, claims.SessionID())
}

func TestRegister_Rejected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &user.RegisterRequest{Email: "ana@example.com", Password: "segredo123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &user.RegisterRequest{Email: "ANA@example.com", Password: "segredo123"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = svc.Register(ctx, &user.RegisterRequest{Email: "bia@example.com", Password: "segredo123", ConfirmPassword: "outro1234"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = svc.Register(ctx, &user.RegisterRequest{Email: "bia@example.com", Password: "curta1"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = svc.Register(ctx, &user.RegisterRequest{Email: "  ", Password: "segredo123"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestRegister_DefaultsToCustomer(t *testing.T) {
	svc, _ := newService(t)

	resp, err := svc.Register(context.Background(), &user.RegisterRequest{Email: "ana@example.com", Password: "segredo123", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleCustomer, resp.User.Role)
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, &user.RegisterRequest{Email: "ana@example.com", Password: "segredo123"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &user.LoginRequest{Email: "Ana@example.com", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)

	_, err = svc.Login(ctx, &user.LoginRequest{Email: "ana@example.com", Password: "errada123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &user.LoginRequest{Email: "ninguem@example.com", Password: "segredo123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.True(t, apperr.IsKind(err, apperr.KindNotAuthenticated))
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, &user.RegisterRequest{Email: "ana@example.com", Password: "segredo123"})
	require.NoError(t, err)

	_, claims, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	require.NoError(t, svc.Logout(ctx, claims))
	require.NoError(t, svc.Logout(ctx, nil))

	caller, _, err := svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, user.ErrSessionExpired)
	assert.False(t, caller.IsAuthenticated())
}

func TestAuthenticate_BadToken(t *testing.T) {
	svc, _ := newService(t)

	_, _, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, user.ErrSessionExpired)
}

func TestAuthenticate_WithoutSessionStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := testConfig()
	store := memory.NewStore()
	svc := user.NewService(store.Users(), auth.NewPasswordManager(cfg), auth.NewJWTManager(cfg), nil, logger)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &user.RegisterRequest{Email: "ana@example.com", Password: "segredo123"})
	require.NoError(t, err)

	caller, claims, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, caller.UserID)
	assert.NoError(t, svc.Logout(ctx, claims))
}

func TestMe(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, &user.RegisterRequest{Email: "ana@example.com", Password: "segredo123"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, user.CallerOf(resp.User))
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, me.ID)

	_, err = svc.Me(ctx, user.Anonymous)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	_, err = svc.Me(ctx, user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b999"})
	assert.ErrorIs(t, err, user.ErrSessionExpired)
}

func TestCaller(t *testing.T) {
	assert.ErrorIs(t, user.Anonymous.RequireAuthenticated(), apperr.ErrNotAuthenticated)
	assert.ErrorIs(t, user.Anonymous.RequireSeller(), apperr.ErrNotAuthenticated)

	customer := user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b901", Role: user.RoleCustomer}
	assert.NoError(t, customer.RequireAuthenticated())
	assert.ErrorIs(t, customer.RequireSeller(), apperr.ErrNotAuthorized)

	seller := user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b902", Role: user.RoleSeller}
	assert.NoError(t, seller.RequireSeller())
}
