package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mferrero/trip-ledger/config"
	"github.com/mferrero/trip-ledger/internal/types"
)

func setupAuthServiceTest(t *testing.T, password string, ttl time.Duration) *AuthServiceImpl {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(config.AuthConfig{
		SecretKey:    "test-secret",
		PasswordHash: string(hash),
		TokenTTL:     ttl,
	}, logger)
}

func TestAuthServiceImpl_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("correct password returns a signed token", func(t *testing.T) {
		service := setupAuthServiceTest(t, "open-sesame", time.Hour)

		tokenString, err := service.Login(ctx, "open-sesame")
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)
		assert.Equal(t, "owner", claims.Subject)
		assert.Equal(t, "owner", claims.Scope)

		remaining := time.Until(claims.ExpiresAt.Time)
		assert.Greater(t, remaining, 55*time.Minute)
		assert.LessOrEqual(t, remaining, time.Hour)
	})

	t.Run("wrong password returns ErrUnauthenticated", func(t *testing.T) {
		service := setupAuthServiceTest(t, "open-sesame", time.Hour)

		_, err := service.Login(ctx, "guess")
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUnauthenticated))
	})

	t.Run("zero TTL falls back to one hour", func(t *testing.T) {
		service := setupAuthServiceTest(t, "open-sesame", 0)

		tokenString, err := service.Login(ctx, "open-sesame")
		require.NoError(t, err)

		claims := &Claims{}
		_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		assert.Greater(t, time.Until(claims.ExpiresAt.Time), 55*time.Minute)
	})
}
