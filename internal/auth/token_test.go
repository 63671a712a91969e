package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager("test-secret", "warta-test", time.Hour)
	require.NoError(t, err)
	return manager
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", "warta-test", time.Hour)
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	manager := newTestTokenManager(t)

	for _, role := range []authz.Role{authz.RoleSuperAdmin, authz.RoleAdmin, authz.RoleEditor, authz.RoleReporter, authz.RoleUser} {
		raw, err := manager.Issue(42, role)
		require.NoError(t, err)

		claims, err := manager.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, string(role), claims.Role)

		actor, err := manager.VerifyActor(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(42), actor.ID)
		assert.Equal(t, string(role), actor.Role)
	}
}

func TestTokenExpired(t *testing.T) {
	manager := newTestTokenManager(t)

	// Sign an already-expired token with the manager's own secret.
	past := time.Now().Add(-time.Hour)
	claims := Claims{
		Role: string(authz.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = manager.Verify(raw)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)
}

func TestTokenWrongSignature(t *testing.T) {
	manager := newTestTokenManager(t)
	other, err := NewTokenManager("another-secret", "warta-test", time.Hour)
	require.NoError(t, err)

	raw, err := other.Issue(1, authz.RoleUser)
	require.NoError(t, err)

	_, err = manager.Verify(raw)
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestTokenGarbage(t *testing.T) {
	manager := newTestTokenManager(t)
	_, err := manager.Verify("not-a-token")
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestTokenRejectsUnknownRoleClaim(t *testing.T) {
	manager := newTestTokenManager(t)
	claims := Claims{
		Role: "WIZARD",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = manager.Verify(raw)
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestTokenRejectsNonNumericSubject(t *testing.T) {
	manager := newTestTokenManager(t)
	claims := Claims{
		Role: string(authz.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = manager.VerifyActor(raw)
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestTokenExpirySetFromTTL(t *testing.T) {
	manager, err := NewTokenManager("test-secret", "warta-test", 30*time.Minute)
	require.NoError(t, err)

	raw, err := manager.Issue(9, authz.RoleReporter)
	require.NoError(t, err)

	claims, err := manager.Verify(raw)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, strconv.FormatInt(9, 10), claims.Subject)
	assert.InDelta(t, 30*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time), float64(time.Second))
}
