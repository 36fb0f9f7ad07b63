package services

import (
	"testing"
	"time"

	"journey-chat/config"
	chat_errors "journey-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	svc := NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiryMin: 5})

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.IssueAccessToken("alice", "alice_t")
		require.NoError(t, err)

		claims, err := svc.ParseAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.UserID)
		assert.Equal(t, "alice_t", claims.Username)
	})

	t.Run("rejects", func(t *testing.T) {
		other := NewAuthService(&config.Config{JWTSecret: "other-secret"})
		foreign, err := other.IssueAccessToken("alice", "")
		require.NoError(t, err)

		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
			UserID: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{UserID: "alice"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		for name, token := range map[string]string{
			"empty":      "",
			"garbage":    "not-a-token",
			"foreign":    foreign,
			"expired":    expired,
			"no subject": noSubject,
			"alg none":   unsigned,
		} {
			t.Run(name, func(t *testing.T) {
				_, err := svc.ParseAccessToken(token)
				assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
			})
		}
	})

	t.Run("zero expiry falls back to default", func(t *testing.T) {
		s := NewAuthService(&config.Config{JWTSecret: "x"})
		assert.Equal(t, 15*time.Minute, s.accessTTL)
	})
}
