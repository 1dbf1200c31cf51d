package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-32-bytes-long!!",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		svc, err := NewJWTService(testAuthConfig())
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("short secret is rejected", func(t *testing.T) {
		t.Parallel()
		cfg := testAuthConfig()
		cfg.JWTSecret = "too-short"
		_, err := NewJWTService(cfg)
		assert.Error(t, err)
	})
}

func TestJWTService_AccessTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	t.Run("round trip carries the user ID", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()

		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.NotEmpty(t, claims.ID, "token should carry a unique jti")
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		t.Parallel()
		otherCfg := testAuthConfig()
		otherCfg.JWTSecret = "a-completely-different-32-byte-key!!"
		other, err := NewJWTService(otherCfg)
		require.NoError(t, err)

		token, err := other.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token is rejected as an access token", func(t *testing.T) {
		t.Parallel()
		token, err := svc.GenerateRefreshToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}

func TestJWTService_RefreshTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()

		token, err := svc.GenerateRefreshToken(ctx, userID)
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	})

	t.Run("access token is rejected as a refresh token", func(t *testing.T) {
		t.Parallel()
		token, err := svc.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateRefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}

func TestJWTService_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newServiceAt := func(t *testing.T, now time.Time) *hmacJWTService {
		t.Helper()
		svc, err := NewJWTService(testAuthConfig())
		require.NoError(t, err)
		impl, ok := svc.(*hmacJWTService)
		require.True(t, ok)
		impl.timeFunc = func() time.Time { return now }
		return impl
	}

	t.Run("expired token beyond the clock skew", func(t *testing.T) {
		t.Parallel()
		issued := time.Now().UTC()
		svc := newServiceAt(t, issued)

		token, err := svc.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		// 60m lifetime plus 2m skew; 63m later it must be expired.
		svc.timeFunc = func() time.Time { return issued.Add(63 * time.Minute) }
		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("expired token inside the clock skew still validates", func(t *testing.T) {
		t.Parallel()
		issued := time.Now().UTC()
		svc := newServiceAt(t, issued)

		token, err := svc.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		svc.timeFunc = func() time.Time { return issued.Add(61 * time.Minute) }
		_, err = svc.ValidateToken(ctx, token)
		assert.NoError(t, err, "expiry within the skew window should be tolerated")
	})
}
