package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "personapilot/internal/errors"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_FailsClosedWithoutSecret(t *testing.T) {
	svc, err := NewJWTService(TokenConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
	assert.Nil(t, svc)
}

func TestNewJWTService_RefreshSecretFallsBack(t *testing.T) {
	svc, err := NewJWTService(TokenConfig{AccessSecret: "only"})
	require.NoError(t, err)
	assert.Equal(t, []byte("only"), svc.refreshSecret)
	assert.Equal(t, AccessTokenExpiry, svc.AccessTTL())
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	access, refresh, err := svc.GeneratePair(userID)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserUUID())
	assert.Equal(t, TokenAccess, claims.Type)

	claims, err = svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserUUID())
}

func TestJWTService_TokensAreDistinctPerCall(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	a1, r1, err := svc.GeneratePair(userID)
	require.NoError(t, err)
	a2, r2, err := svc.GeneratePair(userID)
	require.NoError(t, err)

	assert.NotEqual(t, a1, a2)
	assert.NotEqual(t, r1, r2)
	assert.NotEqual(t, a1, r1)
}

func TestJWTService_InvalidTokensCollapse(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	access, refresh, err := svc.GeneratePair(userID)
	require.NoError(t, err)

	expiredSvc := newTestJWTService(t)
	expiredSvc.now = func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }
	_, expiredRefresh, err := expiredSvc.GeneratePair(userID)
	require.NoError(t, err)

	other, err := NewJWTService(TokenConfig{AccessSecret: "someone-else"})
	require.NoError(t, err)
	_, foreignRefresh, err := other.GeneratePair(userID)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           userID.String(),
		Type:             TokenRefresh,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"tampered signature", refresh[:len(refresh)-2] + "xx"},
		{"access token used as refresh", access},
		{"expired", expiredRefresh},
		{"wrong secret", foreignRefresh},
		{"alg none", noneToken},
		{"truncated", strings.Join(strings.Split(refresh, ".")[:2], ".")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateRefreshToken(tt.token)
			assert.Nil(t, claims)
			assert.Equal(t, apperrors.ErrInvalidToken, err)
		})
	}
}
