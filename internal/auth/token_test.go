package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	issuedAt   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, 0).WithClock(fixedClock(issuedAt))
	assert.Equal(t, DefaultTokenTTL, svc.TTL())

	tok, err := svc.Issue(42)
	require.NoError(t, err)

	id, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestValidateExpiry(t *testing.T) {
	svc := NewTokenService(testSecret, 30*time.Minute).WithClock(fixedClock(issuedAt))
	tok, err := svc.Issue(7)
	require.NoError(t, err)

	_, err = svc.WithClock(fixedClock(issuedAt.Add(29 * time.Minute))).Validate(tok)
	assert.NoError(t, err)

	_, err = svc.WithClock(fixedClock(issuedAt.Add(30 * time.Minute))).Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = svc.WithClock(fixedClock(issuedAt.Add(2 * time.Hour))).Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Minute).WithClock(fixedClock(issuedAt))
	tok, err := issuer.Issue(7)
	require.NoError(t, err)

	svc := NewTokenService(testSecret, time.Minute).WithClock(fixedClock(issuedAt))
	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateForgedExpiredTokenIsInvalidNotExpired(t *testing.T) {
	issuer := NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Minute).WithClock(fixedClock(issuedAt))
	tok, err := issuer.Issue(7)
	require.NoError(t, err)

	svc := NewTokenService(testSecret, time.Minute).WithClock(fixedClock(issuedAt.Add(time.Hour)))
	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTampered(t *testing.T) {
	svc := NewTokenService(testSecret, time.Minute).WithClock(fixedClock(issuedAt))
	tok, err := svc.Issue(7)
	require.NoError(t, err)

	other, err := svc.Issue(8)
	require.NoError(t, err)
	// Graft the payload of token 8 onto the signature of token 7.
	parts, otherParts := strings.Split(tok, "."), strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = svc.Validate(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Minute).WithClock(fixedClock(issuedAt))
	exp := jwt.NewNumericDate(issuedAt.Add(time.Minute))

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "alg none", token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType,
			jwt.RegisteredClaims{Subject: "7", ExpiresAt: exp})},
		{name: "HS512", token: sign(jwt.SigningMethodHS512, testSecret,
			jwt.RegisteredClaims{Subject: "7", ExpiresAt: exp})},
		{name: "missing exp", token: sign(jwt.SigningMethodHS256, testSecret,
			jwt.RegisteredClaims{Subject: "7"})},
		{name: "non-numeric sub", token: sign(jwt.SigningMethodHS256, testSecret,
			jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp})},
		{name: "zero sub", token: sign(jwt.SigningMethodHS256, testSecret,
			jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
