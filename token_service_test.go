package auth_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenConfig() *auth.Config {
	return &auth.Config{
		SessionSecret: "session-signing-secret",
		PreAuthSecret: "preauth-signing-secret",
		SessionTTL:    time.Hour,
		PreAuthTTL:    5 * time.Minute,
		Issuer:        "test-issuer",
	}
}

func TestTokenService_PreAuthRoundTrip(t *testing.T) {
	service := auth.NewTokenService(tokenConfig())

	token, err := service.IssuePreAuth(42, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyPreAuth(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestTokenService_SessionRoundTrip(t *testing.T) {
	service := auth.NewTokenService(tokenConfig())

	token, err := service.IssueSession(42, 7, map[string]any{"name": "Ada"})
	require.NoError(t, err)

	claims, err := service.VerifySession(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID())
	assert.Equal(t, int64(7), claims.Workspace())
	assert.Equal(t, "Ada", claims.Extra["name"])
	assert.NotEmpty(t, claims.ID, "session tokens carry a unique id")
}

func TestTokenService_Expiry(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt

	service := auth.NewTokenService(tokenConfig(), auth.WithTokenClock(func() time.Time {
		return now
	}))

	t.Run("pre-auth token expires after its TTL", func(t *testing.T) {
		token, err := service.IssuePreAuth(1, "user@example.com")
		require.NoError(t, err)

		now = issuedAt.Add(4 * time.Minute)
		_, err = service.VerifyPreAuth(token)
		assert.NoError(t, err)

		now = issuedAt.Add(6 * time.Minute)
		_, err = service.VerifyPreAuth(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenExpired(err))
		assert.False(t, auth.IsTokenInvalid(err))
	})

	t.Run("session token expires after its TTL", func(t *testing.T) {
		now = issuedAt
		token, err := service.IssueSession(1, 2, nil)
		require.NoError(t, err)

		now = issuedAt.Add(59 * time.Minute)
		_, err = service.VerifySession(token)
		assert.NoError(t, err)

		now = issuedAt.Add(61 * time.Minute)
		_, err = service.VerifySession(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenExpired(err))
	})
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	service := auth.NewTokenService(tokenConfig())

	t.Run("garbage input", func(t *testing.T) {
		_, err := service.VerifySession("not-a-token")
		require.Error(t, err)
		assert.True(t, auth.IsTokenInvalid(err))
		assert.False(t, auth.IsTokenExpired(err))
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := service.IssueSession(1, 2, nil)
		require.NoError(t, err)

		tampered := token[:len(token)-4] + "AAAA"
		_, err = service.VerifySession(tampered)
		require.Error(t, err)
		assert.True(t, auth.IsTokenInvalid(err))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := tokenConfig()
		other.SessionSecret = "a-completely-different-secret"
		otherService := auth.NewTokenService(other)

		token, err := otherService.IssueSession(1, 2, nil)
		require.NoError(t, err)

		_, err = service.VerifySession(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenInvalid(err))
	})

	t.Run("pre-auth token is not a session token", func(t *testing.T) {
		token, err := service.IssuePreAuth(1, "user@example.com")
		require.NoError(t, err)

		_, err = service.VerifySession(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenInvalid(err))
	})

	t.Run("use claim is checked even with shared secrets", func(t *testing.T) {
		shared := tokenConfig()
		shared.PreAuthSecret = shared.SessionSecret
		sharedService := auth.NewTokenService(shared)

		token, err := sharedService.IssuePreAuth(1, "user@example.com")
		require.NoError(t, err)

		_, err = sharedService.VerifySession(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenInvalid(err))
	})
}

func TestTokenService_TamperedAndExpiredIsInvalid(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt

	service := auth.NewTokenService(tokenConfig(), auth.WithTokenClock(func() time.Time {
		return now
	}))

	token, err := service.IssueSession(1, 2, nil)
	require.NoError(t, err)

	now = issuedAt.Add(2 * time.Hour)
	tampered := token[:len(token)-4] + "AAAA"

	_, err = service.VerifySession(tampered)
	require.Error(t, err)
	assert.True(t, auth.IsTokenInvalid(err), "a broken signature wins over expiry")
	assert.False(t, auth.IsTokenExpired(err))
}
