package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-at-least-32-chars!"
	testIssuer = "https://testref.supabase.co/auth/v1"
)

func testVerifier() *Verifier {
	return NewVerifier(VerifierConfig{Secret: testSecret, Issuer: testIssuer})
}

func validOpts() TokenOptions {
	return TokenOptions{
		Subject:  "user-123",
		Email:    "ranger@example.org",
		Role:     "authenticated",
		Issuer:   testIssuer,
		Audience: DefaultAudience,
	}
}

func mustIssue(t *testing.T, secret string, opts TokenOptions) string {
	t.Helper()
	tok, err := IssueToken(secret, opts)
	require.NoError(t, err)
	return tok
}

func TestVerify_ValidToken(t *testing.T) {
	id, err := testVerifier().Verify(mustIssue(t, testSecret, validOpts()))
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "user-123", Email: "ranger@example.org", Role: "authenticated"}, id)
}

func TestVerify_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		mutate  func(*TokenOptions)
		wantErr error
	}{
		{
			name:    "expired",
			secret:  testSecret,
			mutate:  func(o *TokenOptions) { o.Now = time.Now().Add(-2 * time.Hour); o.TTL = time.Hour },
			wantErr: ErrTokenExpired,
		},
		{
			name:    "wrong secret",
			secret:  "another-secret-key-at-least-32-chars",
			mutate:  func(*TokenOptions) {},
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "wrong issuer",
			secret:  testSecret,
			mutate:  func(o *TokenOptions) { o.Issuer = "https://evil.example/auth/v1" },
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "wrong audience",
			secret:  testSecret,
			mutate:  func(o *TokenOptions) { o.Audience = "anon" },
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "missing subject",
			secret:  testSecret,
			mutate:  func(o *TokenOptions) { o.Subject = "" },
			wantErr: ErrTokenInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOpts()
			tt.mutate(&opts)
			_, err := testVerifier().Verify(mustIssue(t, tt.secret, opts))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify_ExpiredDiffersFromInvalid(t *testing.T) {
	opts := validOpts()
	opts.Now = time.Now().Add(-3 * time.Hour)
	_, expiredErr := testVerifier().Verify(mustIssue(t, testSecret, opts))
	_, garbageErr := testVerifier().Verify("not.a.jwt")

	assert.ErrorIs(t, expiredErr, ErrTokenExpired)
	assert.False(t, errors.Is(expiredErr, ErrTokenInvalid))
	assert.ErrorIs(t, garbageErr, ErrTokenInvalid)
	assert.False(t, errors.Is(garbageErr, ErrTokenExpired))
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{DefaultAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = testVerifier().Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = testVerifier().Verify(none)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:  "user-123",
		Issuer:   testIssuer,
		Audience: jwt.ClaimStrings{DefaultAudience},
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = testVerifier().Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_NotConfigured(t *testing.T) {
	tok := mustIssue(t, testSecret, validOpts())

	for name, v := range map[string]*Verifier{
		"no secret": NewVerifier(VerifierConfig{Issuer: testIssuer}),
		"no issuer": NewVerifier(VerifierConfig{Secret: testSecret}),
		"nil":       nil,
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, v.Configured())
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"bearer   abc.def.ghi  ", "abc.def.ghi", nil},
		{"", "", ErrMissingHeader},
		{"   ", "", ErrMissingHeader},
		{"Bearer", "", ErrMissingToken},
		{"Bearer    ", "", ErrMissingToken},
		{"Basic dXNlcjpwYXNz", "", ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.header, " ", "_"), func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	v := testVerifier()

	_, err := v.Authenticate("")
	assert.ErrorIs(t, err, ErrMissingHeader)

	id, err := v.Authenticate("Bearer " + mustIssue(t, testSecret, validOpts()))
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.Subject)
}

func TestNewVerifier_DefaultAudience(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret, Issuer: testIssuer})
	assert.Equal(t, DefaultAudience, v.audience)
}
