package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test_secret_key_1234567890"
	testIssuer = "cookie-auth"
)

func newClaims(subject string, issuedAt time.Time, ttl time.Duration) CustomClaims {
	return CustomClaims{
		Email: subject + "@example.com",
		Name:  "User " + subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	maker := NewJWTMaker(testSecret, testIssuer)
	now := time.Now()

	tests := []struct {
		name       string
		subject    string
		persistent bool
		ttl        time.Duration
	}{
		{
			name:    "session cookie",
			subject: "alice",
			ttl:     24 * time.Hour,
		},
		{
			name:       "persistent cookie",
			subject:    "bob",
			persistent: true,
			ttl:        30 * 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := newClaims(tt.subject, now, tt.ttl)
			claims.Persistent = tt.persistent

			token, err := maker.GenerateToken(claims)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			parsed, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.subject, parsed.Subject)
			assert.Equal(t, tt.subject+"@example.com", parsed.Email)
			assert.Equal(t, "User "+tt.subject, parsed.Name)
			assert.Equal(t, tt.persistent, parsed.Persistent)
			assert.Equal(t, testIssuer, parsed.Issuer)
			assert.WithinDuration(t, now, parsed.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, now.Add(tt.ttl), parsed.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, testIssuer)

	validToken, err := maker.GenerateToken(newClaims("testuser", time.Now(), time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "malformed token",
			token: "invalid.token.here",
		},
		{
			name:  "expired token",
			token: createExpiredToken(t),
		},
		{
			name:  "wrong secret key",
			token: createTokenWithWrongSecret(t),
		},
		{
			name:  "wrong issuer",
			token: createTokenWithIssuer(t, "someone-else"),
		},
		{
			name:  "tampered token",
			token: validToken + "tampered",
		},
		{
			name:  "unsigned token",
			token: createUnsignedToken(t),
		},
		{
			name:  "missing expiry",
			token: createTokenWithoutExpiry(t),
		},
		{
			name:  "missing subject",
			token: createTokenWithoutSubject(t),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", testIssuer)
	maker2 := NewJWTMaker("different_secret_key", testIssuer)

	token, err := maker1.GenerateToken(newClaims("testuser", time.Now(), time.Hour))
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func TestJWTMaker_TokenExpiration(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	maker := NewJWTMaker(testSecret, testIssuer).WithClock(func() time.Time { return now })

	token, err := maker.GenerateToken(newClaims("testuser", issuedAt, 24*time.Hour))
	require.NoError(t, err)

	now = issuedAt.Add(24*time.Hour - time.Second)
	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)

	now = issuedAt.Add(24*time.Hour + time.Second)
	_, err = maker.ParseToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func createExpiredToken(t *testing.T) string {
	maker := NewJWTMaker(testSecret, testIssuer)
	token, err := maker.GenerateToken(newClaims("testuser", time.Now().Add(-2*time.Hour), time.Hour))
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", testIssuer)
	token, err := wrongMaker.GenerateToken(newClaims("testuser", time.Now(), time.Hour))
	require.NoError(t, err)
	return token
}

func createTokenWithIssuer(t *testing.T, issuer string) string {
	maker := NewJWTMaker(testSecret, issuer)
	token, err := maker.GenerateToken(newClaims("testuser", time.Now(), time.Hour))
	require.NoError(t, err)
	return token
}

func createUnsignedToken(t *testing.T) string {
	claims := newClaims("testuser", time.Now(), time.Hour)
	claims.Issuer = testIssuer
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func createTokenWithoutExpiry(t *testing.T) string {
	maker := NewJWTMaker(testSecret, testIssuer)
	claims := newClaims("testuser", time.Now(), time.Hour)
	claims.ExpiresAt = nil
	token, err := maker.GenerateToken(claims)
	require.NoError(t, err)
	return token
}

func createTokenWithoutSubject(t *testing.T) string {
	maker := NewJWTMaker(testSecret, testIssuer)
	token, err := maker.GenerateToken(newClaims("", time.Now(), time.Hour))
	require.NoError(t, err)
	return token
}
