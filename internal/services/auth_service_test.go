package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekretariat-digital/bukutamu/internal/repositories"
)

const testPassword = "correct-horse-battery"

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(
		repositories.NewMemoryAccountRepository(),
		repositories.NewMemorySessionRepository(),
		"test-secret",
		time.Hour,
	)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	auth := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "admin@example.com", "Admin", testPassword))

	resp, err := auth.Login(ctx, "admin@example.com", testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := auth.VerifyToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AccountID, claims.AccountID)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	auth := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "admin@example.com", "Admin", testPassword))
	assert.ErrorIs(t, auth.Register(ctx, "admin@example.com", "Again", testPassword), ErrEmailExists)
}

func TestAuthService_WrongPassword(t *testing.T) {
	auth := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "admin@example.com", "Admin", testPassword))

	_, err := auth.Login(ctx, "admin@example.com", "wrong-password-here")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LogoutInvalidatesToken(t *testing.T) {
	auth := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, auth.Register(ctx, "admin@example.com", "Admin", testPassword))
	resp, err := auth.Login(ctx, "admin@example.com", testPassword)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, resp.Token))

	_, err = auth.VerifyToken(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "token dies with its session")
}

func TestAuthService_GarbageToken(t *testing.T) {
	auth := newAuthFixture(t)

	_, err := auth.VerifyToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
